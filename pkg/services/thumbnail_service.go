package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/image/draw"
	"google.golang.org/api/iterator"

	"map-gallery/pkg/config"
	"map-gallery/pkg/logging"
)

const (
	// colorDifferenceThreshold is the smallest per-channel difference counted
	// as a different colour, allowing for compression artifacts
	colorDifferenceThreshold = 256

	// thumbnailPrefix is the object prefix of uploaded thumbnails
	thumbnailPrefix = "thumbnails/"
)

// ProgressCallback receives progress updates
type ProgressCallback func(step string, progress int)

// ThumbnailService scales map images down to JPEG thumbnails
type ThumbnailService struct {
	config    *config.Config
	resources *Service
	log       *slog.Logger
}

// NewThumbnailService returns a thumbnail service for the maps of resources
func NewThumbnailService(cfg *config.Config, resources *Service) *ThumbnailService {
	return &ThumbnailService{
		config:    cfg,
		resources: resources,
		log:       logging.WithComponent("thumbnails"),
	}
}

// ThumbnailName is the file name of the thumbnail generated for image
func ThumbnailName(imagePath string) string {
	clean := strings.TrimPrefix(imagePath, "/")
	if idx := strings.Index(clean, "?"); idx != -1 {
		clean = clean[:idx]
	}
	base := strings.TrimSuffix(clean, path.Ext(clean))
	return getSafeFilename(strings.ReplaceAll(base, "/", "_") + ".jpg")
}

// ThumbnailURL is where browsers fetch a generated thumbnail
func ThumbnailURL(cfg *config.Config, name string) string {
	if cfg.ThumbnailBucket != "" {
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s%s", cfg.ThumbnailBucket, thumbnailPrefix, name)
	}
	return "/thumbs/" + name
}

// Generate creates the thumbnail for one map image and returns its file name
func (t *ThumbnailService) Generate(ctx context.Context, imagePath string, progressCb ProgressCallback) (string, error) {
	sendProgress := func(step string, progress int) {
		if progressCb != nil {
			progressCb(step, progress)
		}
	}

	sendProgress("Setting up directories", 10)
	if err := os.MkdirAll(t.config.ThumbnailDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	sendProgress("Reading image", 30)
	src, err := t.decode(ctx, imagePath)
	if err != nil {
		return "", err
	}

	sendProgress("Scaling image", 60)
	thumb := scale(src, t.config.ThumbnailWidth)

	sendProgress("Validating thumbnail", 70)
	if err := validateThumbnail(thumb); err != nil {
		return "", fmt.Errorf("thumbnail validation failed for %s: %w", imagePath, err)
	}

	name := ThumbnailName(imagePath)
	dst := filepath.Join(t.config.ThumbnailDir, name)

	sendProgress("Writing thumbnail", 80)
	if err := writeJPEG(dst, thumb); err != nil {
		return "", err
	}

	if t.config.ThumbnailBucket != "" {
		sendProgress("Uploading thumbnail", 90)
		if err := t.withBucket(ctx, func(bucket *storage.BucketHandle) error {
			return uploadFile(ctx, bucket, dst, thumbnailPrefix+name)
		}); err != nil {
			return "", fmt.Errorf("error uploading thumbnail: %w", err)
		}
	}

	sendProgress("Clearing cache", 95)
	t.resources.Flush()

	sendProgress("Complete", 100)
	t.log.Info("thumbnail generated", slog.String("image", imagePath), slog.String("thumbnail", name))
	return name, nil
}

// Clear removes the thumbnail of one map image
func (t *ThumbnailService) Clear(ctx context.Context, imagePath string) error {
	name := ThumbnailName(imagePath)
	if err := os.Remove(filepath.Join(t.config.ThumbnailDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete thumbnail: %w", err)
	}
	if t.config.ThumbnailBucket != "" {
		err := t.withBucket(ctx, func(bucket *storage.BucketHandle) error {
			err := bucket.Object(thumbnailPrefix + name).Delete(ctx)
			if errors.Is(err, storage.ErrObjectNotExist) {
				return nil
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to delete uploaded thumbnail: %w", err)
		}
	}
	t.resources.Flush()
	return nil
}

// BulkGenerate creates thumbnails for every map. Existing thumbnails are
// kept unless force is set. Failures are counted, not returned.
func (t *ThumbnailService) BulkGenerate(ctx context.Context, force bool) (processed int, failed int, err error) {
	t.resources.Flush()
	maps, err := t.resources.Maps(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, m := range maps {
		if err := ctx.Err(); err != nil {
			return processed, failed, err
		}
		if !force {
			if _, err := os.Stat(filepath.Join(t.config.ThumbnailDir, ThumbnailName(m.Image))); err == nil {
				continue
			}
		}
		if _, err := t.Generate(ctx, m.Image, nil); err != nil {
			t.log.Error("error creating thumbnail", slog.String("image", m.Image), slog.Any("err", err))
			failed++
			continue
		}
		processed++
	}
	return processed, failed, nil
}

// BulkClear removes every generated thumbnail
func (t *ThumbnailService) BulkClear(ctx context.Context) (int, error) {
	deleted := 0
	files, err := filepath.Glob(filepath.Join(t.config.ThumbnailDir, "*.jpg"))
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			t.log.Error("error deleting thumbnail", slog.String("file", f), slog.Any("err", err))
			continue
		}
		deleted++
	}

	if t.config.ThumbnailBucket != "" {
		err := t.withBucket(ctx, func(bucket *storage.BucketHandle) error {
			it := bucket.Objects(ctx, &storage.Query{Prefix: thumbnailPrefix})
			for {
				obj, err := it.Next()
				if errors.Is(err, iterator.Done) {
					return nil
				}
				if err != nil {
					return fmt.Errorf("error iterating objects: %w", err)
				}
				if err := bucket.Object(obj.Name).Delete(ctx); err != nil {
					t.log.Error("error deleting thumbnail", slog.String("object", obj.Name), slog.Any("err", err))
				}
			}
		})
		if err != nil {
			return deleted, err
		}
	}

	t.resources.Flush()
	return deleted, nil
}

func (t *ThumbnailService) decode(ctx context.Context, imagePath string) (image.Image, error) {
	r, err := t.resources.Source().Open(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("error reading image: %w", err)
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", imagePath, err)
	}
	return img, nil
}

func (t *ThumbnailService) withBucket(ctx context.Context, fn func(*storage.BucketHandle) error) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	defer client.Close()
	return fn(client.Bucket(t.config.ThumbnailBucket))
}

// scale resizes src to width, keeping the aspect ratio. Images already
// narrower than width are copied as they are.
func scale(src image.Image, width int) image.Image {
	b := src.Bounds()
	if width <= 0 || b.Dx() <= width {
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func writeJPEG(dst string, img image.Image) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		f.Close()
		return fmt.Errorf("jpeg.Encode: %w", err)
	}
	return f.Close()
}

func uploadFile(ctx context.Context, bucket *storage.BucketHandle, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("os.ReadFile: %w", err)
	}

	writer := bucket.Object(strings.TrimPrefix(dst, "/")).NewWriter(ctx)
	writer.ContentType = "image/jpeg"

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("Writer.Write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

// validateThumbnail rejects images that are a single solid colour
func validateThumbnail(img image.Image) error {
	bounds := img.Bounds()
	const sampleSize = 10
	stepX := max(bounds.Dx()/sampleSize, 1)
	stepY := max(bounds.Dy()/sampleSize, 1)

	r1, g1, b1, a1 := img.At(bounds.Min.X, bounds.Min.Y).RGBA()

	differentPixels := 0
	totalSamples := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			totalSamples++
			r2, g2, b2, a2 := img.At(x, y).RGBA()
			if differs(r1, r2) || differs(g1, g2) || differs(b1, b2) || differs(a1, a2) {
				differentPixels++
			}
		}
	}

	if totalSamples > 0 && float64(differentPixels)/float64(totalSamples) < 0.01 {
		return fmt.Errorf("thumbnail appears to be a solid color (only %d/%d sampled pixels differ)", differentPixels, totalSamples)
	}
	return nil
}

func differs(a, b uint32) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d > colorDifferenceThreshold
}

func getSafeFilename(p string) string {
	baseName := filepath.Base(p)
	if len(baseName) <= 200 {
		return baseName
	}

	hash := sha256.Sum256([]byte(p))
	shortName := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, baseName[:20])
	return fmt.Sprintf("%s-%s%s", shortName, hex.EncodeToString(hash[:8]), filepath.Ext(baseName))
}
