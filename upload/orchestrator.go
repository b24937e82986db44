package upload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/media"
	"github.com/rayansaffron/storefront/storage"
)

// Encoder is the resize/watermark/encode stage.
type Encoder interface {
	Encode(src image.Image, format media.Format, target media.Target) (*media.Encoded, error)
}

// Publisher is the remote upload stage.
type Publisher interface {
	Publish(ctx context.Context, req storage.PublishRequest) (*storage.PublishedAsset, error)
}

type Options struct {
	// TempDir holds per-file scratch files; empty means os.TempDir().
	TempDir string
	// Concurrency is the number of files of one request processed at once.
	// Values below 2 process files sequentially.
	Concurrency int
	Logger      *slog.Logger
}

// Orchestrator runs every file of a request through inspect, resolve,
// encode and publish, all or nothing.
type Orchestrator struct {
	encoder     Encoder
	publisher   Publisher
	tempDir     string
	concurrency int
	logger      *slog.Logger
}

func New(encoder Encoder, publisher Publisher, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		encoder:     encoder,
		publisher:   publisher,
		tempDir:     opts.TempDir,
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

// Process validates the whole batch before touching any file, then
// processes each file. Any failure fails the request; assets already
// published for it are logged as orphans.
func (o *Orchestrator) Process(ctx context.Context, policy Policy, files map[string][]File) (*Result, error) {
	jobs, err := preflight(policy, files)
	if err != nil {
		return nil, err
	}

	assets := make([]*storage.PublishedAsset, len(jobs))

	if o.concurrency < 2 {
		for i, j := range jobs {
			asset, err := o.processFile(ctx, j)
			if err != nil {
				o.logOrphans(assets)
				return nil, err
			}
			assets[i] = asset
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.concurrency)
		for i, j := range jobs {
			g.Go(func() error {
				asset, err := o.processFile(gctx, j)
				if err != nil {
					return err
				}
				assets[i] = asset
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			o.logOrphans(assets)
			return nil, err
		}
	}

	result := newResult(jobs, assets)
	o.logSummary(result.Summary)
	return result, nil
}

func preflight(policy Policy, files map[string][]File) ([]*fileJob, error) {
	const op = "upload.preflight"

	for name := range files {
		if _, ok := policy.field(name); !ok {
			return nil, apperr.Errorf(apperr.KindInvalidRequest, op, "unexpected file field %q", name)
		}
	}

	total := 0
	for _, spec := range policy.Fields {
		n := len(files[spec.Name])
		if spec.Required && n == 0 {
			return nil, apperr.Errorf(apperr.KindInvalidRequest, op, "%s is required", spec.Name)
		}
		if n > spec.MaxCount {
			return nil, apperr.Errorf(apperr.KindPayloadTooLarge, op, "field %q accepts at most %d files, got %d", spec.Name, spec.MaxCount, n)
		}
		total += n
	}
	if limit := policy.maxFiles(); total > limit {
		return nil, apperr.Errorf(apperr.KindPayloadTooLarge, op, "request carries %d files, at most %d allowed", total, limit)
	}

	limit := policy.maxFileBytes()
	var jobs []*fileJob
	for _, spec := range policy.Fields {
		for _, f := range files[spec.Name] {
			if f.Size > limit {
				return nil, apperr.Errorf(apperr.KindPayloadTooLarge, op, "%s is %d bytes, limit is %d", f.Name, f.Size, limit)
			}
			if !allowedType(f.ContentType) {
				return nil, apperr.Errorf(apperr.KindUnsupportedMediaType, op, "%s has type %q; only jpeg, png, webp and gif are allowed", f.Name, f.ContentType)
			}
			jobs = append(jobs, &fileJob{spec: spec, file: f, maxBytes: limit, state: StatePending})
		}
	}
	return jobs, nil
}

func (o *Orchestrator) processFile(ctx context.Context, j *fileJob) (asset *storage.PublishedAsset, err error) {
	const op = "upload.processFile"
	log := o.logger.With("field", j.spec.Name, "file", j.file.Name, "role", j.spec.Role.String())

	defer func() {
		j.cleanup(log)
		if err != nil {
			log.Error("image processing failed", "state", j.state, "err", err)
			j.transition(StateFailed)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, apperr.E(apperr.KindInternal, op, err)
	}

	original, err := j.receive(o.tempDir)
	if err != nil {
		return nil, err
	}
	j.transition(StateReceived)

	meta, img, err := inspectFile(original)
	if err != nil {
		return nil, err
	}
	j.transition(StateInspected)

	target := media.Resolve(j.spec.Role, j.spec.Ceiling, meta.Width, meta.Height)
	log.Info("processing image", "source", meta.String(), "target_width", target.Width, "target_height", target.Height)

	encoded, err := o.encoder.Encode(img, meta.Format, target)
	if err != nil {
		return nil, err
	}
	optimized, err := j.writeTemp(o.tempDir, "optimized-*"+encoded.Extension(), encoded.Data)
	if err != nil {
		return nil, err
	}
	j.encoded = encoded
	j.transition(StateEncoded)
	log.Info("image optimized",
		"original_bytes", j.receivedBytes,
		"optimized_bytes", len(encoded.Data),
		"saved", savings(j.receivedBytes, int64(len(encoded.Data))),
		"format", encoded.Format,
	)

	asset, err = o.publisher.Publish(ctx, storage.PublishRequest{
		Field:       j.spec.Name,
		Folder:      j.spec.Folder,
		Path:        optimized,
		ContentType: encoded.ContentType(),
		Format:      string(encoded.Format),
		Width:       encoded.Width,
		Height:      encoded.Height,
	})
	if err != nil {
		return nil, err
	}
	j.transition(StatePublished)
	log.Info("image published", "public_id", asset.PublicID, "url", asset.URL)

	j.transition(StateDone)
	return asset, nil
}

func inspectFile(path string) (media.Metadata, image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return media.Metadata{}, nil, apperr.E(apperr.KindInternal, "upload.inspectFile", err)
	}
	defer f.Close()
	return media.Inspect(f)
}

func (o *Orchestrator) logOrphans(assets []*storage.PublishedAsset) {
	for _, a := range assets {
		if a != nil {
			o.logger.Warn("published asset orphaned by failed request", "public_id", a.PublicID, "url", a.URL)
		}
	}
}

func (o *Orchestrator) logSummary(s Summary) {
	o.logger.Info("upload summary", "total_files", s.TotalFiles)
	for _, f := range s.Files {
		o.logger.Info("uploaded image", "field", f.Field, "file", f.Name, "size", f.FinalSize, "dimensions", f.Dimensions)
	}
}

func savings(before, after int64) string {
	if before <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(before-after)/float64(before)*100)
}

// State is a file's position in the pipeline.
type State string

const (
	StatePending   State = "pending"
	StateReceived  State = "received"
	StateInspected State = "inspected"
	StateEncoded   State = "encoded"
	StatePublished State = "published"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

type fileJob struct {
	spec     FieldSpec
	file     File
	maxBytes int64

	state         State
	temps         []string
	receivedBytes int64
	encoded       *media.Encoded
}

func (j *fileJob) transition(s State) { j.state = s }

// receive streams the upload into a scratch file. The size is enforced on
// the stream as well, since the declared size comes from the client.
func (j *fileJob) receive(dir string) (string, error) {
	const op = "upload.receive"

	in, err := j.file.Open()
	if err != nil {
		return "", apperr.E(apperr.KindInternal, op, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "original-*"+safeExt(j.file.Name))
	if err != nil {
		return "", apperr.E(apperr.KindInternal, op, err)
	}
	j.temps = append(j.temps, tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(in, j.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", apperr.E(apperr.KindInternal, op, err)
	}
	if n > j.maxBytes {
		return "", apperr.Errorf(apperr.KindPayloadTooLarge, op, "%s exceeds %d bytes", j.file.Name, j.maxBytes)
	}

	j.receivedBytes = n
	return tmp.Name(), nil
}

func (j *fileJob) writeTemp(dir, pattern string, data []byte) (string, error) {
	const op = "upload.writeTemp"

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", apperr.E(apperr.KindInternal, op, err)
	}
	j.temps = append(j.temps, tmp.Name())

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", apperr.E(apperr.KindInternal, op, err)
	}
	return tmp.Name(), nil
}

func (j *fileJob) cleanup(log *slog.Logger) {
	for _, p := range j.temps {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("temp file cleanup failed", "path", p, "err", err)
		}
	}
	j.temps = nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, r := range ext[min(1, len(ext)):] {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return ext
}
