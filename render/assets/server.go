package assets

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"path"
	"runtime"
	"strings"
	"sync"

	"github.com/gekko3d/prism"
	"github.com/gekko3d/prism/render/core"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

type TextureAsset struct {
	Id    AssetId
	Path  string
	Image *image.RGBA
}

type EnvironmentAsset struct {
	Id    AssetId
	Path  string
	Image *core.FloatImage
}

type ModelAsset struct {
	Id        AssetId
	Path      string
	Meshes    []MeshData
	Materials []Material
	// Textures holds the diffuse texture of each material, nil when it has none.
	Textures []*TextureAsset
}

type Kind int

const (
	KindTexture Kind = iota
	KindEnvironment
	KindModel
)

type Request struct {
	Kind Kind
	Path string
}

// AssetServer loads and caches assets from a file system. Every asset is decoded once
// per path and handed out by pointer; callers must not mutate it.
type AssetServer struct {
	fsys   fs.FS
	logger prism.Logger

	// MaxTextureSide downscales larger textures. Zero keeps them as they are.
	MaxTextureSide int

	mu           sync.Mutex
	ids          map[Request]AssetId
	textures     map[AssetId]*TextureAsset
	environments map[AssetId]*EnvironmentAsset
	models       map[AssetId]*ModelAsset
}

func NewAssetServer(fsys fs.FS, logger prism.Logger) *AssetServer {
	return &AssetServer{
		fsys:         fsys,
		logger:       prism.OrNop(logger),
		ids:          make(map[Request]AssetId),
		textures:     make(map[AssetId]*TextureAsset),
		environments: make(map[AssetId]*EnvironmentAsset),
		models:       make(map[AssetId]*ModelAsset),
	}
}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}

func (s *AssetServer) LoadBinary(p string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, cleanPath(p))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p, err)
	}
	return data, nil
}

func (s *AssetServer) LoadString(p string) (string, error) {
	data, err := s.LoadBinary(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *AssetServer) lookup(kind Kind, p string) (AssetId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ids[Request{Kind: kind, Path: p}]
	return id, ok
}

// Id returns the id assigned to a path loaded as kind.
func (s *AssetServer) Id(kind Kind, p string) (AssetId, bool) {
	return s.lookup(kind, cleanPath(p))
}

func (s *AssetServer) Texture(id AssetId) (*TextureAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.textures[id]
	return t, ok
}

func (s *AssetServer) Environment(id AssetId) (*EnvironmentAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.environments[id]
	return e, ok
}

func (s *AssetServer) Model(id AssetId) (*ModelAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[id]
	return m, ok
}

func (s *AssetServer) LoadTexture(p string) (*TextureAsset, error) {
	p = cleanPath(p)
	if id, ok := s.lookup(KindTexture, p); ok {
		if t, ok := s.Texture(id); ok {
			return t, nil
		}
	}

	f, err := s.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", p, err)
	}
	defer f.Close()

	img, format, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", p, err)
	}
	if s.MaxTextureSide > 0 {
		img = FitWithin(img, s.MaxTextureSide)
	}
	s.logger.Debugf("texture %s: %s %dx%d", p, format, img.Rect.Dx(), img.Rect.Dy())

	s.mu.Lock()
	defer s.mu.Unlock()
	key := Request{Kind: KindTexture, Path: p}
	if id, ok := s.ids[key]; ok {
		if t, ok := s.textures[id]; ok {
			return t, nil
		}
	}
	t := &TextureAsset{Id: makeAssetId(), Path: p, Image: img}
	s.ids[key] = t.Id
	s.textures[t.Id] = t
	return t, nil
}

// LoadEnvironment decodes an equirectangular environment. Radiance .hdr files keep
// their range; any other image format is treated as sRGB and linearised.
func (s *AssetServer) LoadEnvironment(p string) (*EnvironmentAsset, error) {
	p = cleanPath(p)
	if id, ok := s.lookup(KindEnvironment, p); ok {
		if e, ok := s.Environment(id); ok {
			return e, nil
		}
	}

	f, err := s.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("load environment %s: %w", p, err)
	}
	defer f.Close()

	var img *core.FloatImage
	if strings.EqualFold(path.Ext(p), ".hdr") {
		img, err = DecodeHDR(f)
	} else {
		var rgba *image.RGBA
		rgba, _, err = DecodeImage(f)
		if err == nil {
			img = FloatImageFromRGBA(rgba)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load environment %s: %w", p, err)
	}
	s.logger.Debugf("environment %s: %dx%d", p, img.Width, img.Height)

	s.mu.Lock()
	defer s.mu.Unlock()
	key := Request{Kind: KindEnvironment, Path: p}
	if id, ok := s.ids[key]; ok {
		if e, ok := s.environments[id]; ok {
			return e, nil
		}
	}
	e := &EnvironmentAsset{Id: makeAssetId(), Path: p, Image: img}
	s.ids[key] = e.Id
	s.environments[e.Id] = e
	return e, nil
}

// LoadModel parses an OBJ file together with its material libraries and diffuse
// textures, all resolved relative to the OBJ's directory. A missing material library
// or texture is logged and the affected meshes fall back to no material.
func (s *AssetServer) LoadModel(p string) (*ModelAsset, error) {
	p = cleanPath(p)
	if id, ok := s.lookup(KindModel, p); ok {
		if m, ok := s.Model(id); ok {
			return m, nil
		}
	}

	f, err := s.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", p, err)
	}
	obj, err := ParseOBJ(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", p, err)
	}
	for _, w := range obj.Warnings {
		s.logger.Debugf("model %s: %s", p, w)
	}

	dir := path.Dir(p)
	model := &ModelAsset{Path: p, Meshes: obj.Meshes}
	for _, lib := range obj.MaterialLibs {
		src, err := s.fsys.Open(path.Join(dir, lib))
		if err != nil {
			s.logger.Warnf("model %s: material library %s: %v", p, lib, err)
			continue
		}
		mats, err := ParseMTL(src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("load model %s: %s: %w", p, lib, err)
		}
		model.Materials = append(model.Materials, mats...)
	}

	byName := make(map[string]int, len(model.Materials))
	for i, m := range model.Materials {
		byName[m.Name] = i
	}
	for i := range model.Meshes {
		mesh := &model.Meshes[i]
		mesh.Material = -1
		if idx, ok := byName[mesh.MaterialName]; ok {
			mesh.Material = idx
		} else if mesh.MaterialName != "" {
			s.logger.Warnf("model %s: mesh %s uses unknown material %s", p, mesh.Name, mesh.MaterialName)
		}
	}

	model.Textures = make([]*TextureAsset, len(model.Materials))
	for i, m := range model.Materials {
		if m.DiffuseTexture == "" {
			continue
		}
		tex, err := s.LoadTexture(path.Join(dir, m.DiffuseTexture))
		if err != nil {
			s.logger.Warnf("model %s: material %s: %v", p, m.Name, err)
			continue
		}
		model.Textures[i] = tex
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := Request{Kind: KindModel, Path: p}
	if id, ok := s.ids[key]; ok {
		if m, ok := s.models[id]; ok {
			return m, nil
		}
	}
	model.Id = makeAssetId()
	s.ids[key] = model.Id
	s.models[model.Id] = model
	return model, nil
}

// Preload decodes the requested assets concurrently. The first failure cancels the
// remaining loads and is returned.
func (s *AssetServer) Preload(ctx context.Context, reqs ...Request) error {
	return s.PreloadWith(ctx, reqs, nil)
}

// PreloadWith decodes required and optional assets concurrently. A failed optional
// asset is logged and left out of the cache; callers fall back when they look it up.
func (s *AssetServer) PreloadWith(ctx context.Context, required, optional []Request) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, req := range required {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.load(req)
		})
	}
	for _, req := range optional {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := s.load(req); err != nil {
				s.logger.Warnf("optional asset %s: %v", req.Path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *AssetServer) load(req Request) error {
	var err error
	switch req.Kind {
	case KindTexture:
		_, err = s.LoadTexture(req.Path)
	case KindEnvironment:
		_, err = s.LoadEnvironment(req.Path)
	case KindModel:
		_, err = s.LoadModel(req.Path)
	default:
		err = fmt.Errorf("%w: asset kind %d", ErrUnsupportedFormat, req.Kind)
	}
	return err
}
