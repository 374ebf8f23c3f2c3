package drive

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/response"
)

type uploadState uint8

const (
	stateIdle uploadState = iota
	stateSingleShot
	stateSessionOpen
	statePartsUploading
	stateCompleting
	stateAborting
	stateAborted
	stateDone
)

func (s uploadState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateSingleShot:
		return "single_shot"
	case stateSessionOpen:
		return "session_open"
	case statePartsUploading:
		return "parts_uploading"
	case stateCompleting:
		return "completing"
	case stateAborting:
		return "aborting"
	case stateAborted:
		return "aborted"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// uploader drives one upload from idle to done or aborted. Once a session is
// open it ends with exactly one completion or one abort.
type uploader struct {
	drive   *Drive
	name    string
	data    []byte
	state   uploadState
	session *response.UploadSession
	logger  *slog.Logger
}

func (u *uploader) transition(ctx context.Context, to uploadState, args ...any) {
	u.logger.DebugContext(ctx, "upload state", append([]any{"from", u.state, "to", to}, args...)...)
	u.state = to
}

func (u *uploader) run(ctx context.Context) (*response.Upload, error) {
	d := u.drive

	if len(u.data) <= MaxChunkSize {
		u.transition(ctx, stateSingleShot)
		upload, err := d.router.PutFile(ctx, d.name, u.name, u.data)
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", u.name, err)
		}
		u.transition(ctx, stateDone)
		upload.Parts = 1
		return upload, nil
	}

	session, err := d.router.InitiateUpload(ctx, d.name, u.name)
	if err != nil {
		return nil, fmt.Errorf("initiate upload of %q: %w", u.name, err)
	}
	u.session = session
	u.transition(ctx, stateSessionOpen, "upload_id", session.UploadID)

	chunks := splitChunks(u.data, MaxChunkSize)
	parts, final := chunks[:len(chunks)-1], chunks[len(chunks)-1]

	u.transition(ctx, statePartsUploading, "parts", len(chunks))
	g := d.group()
	for i, part := range parts {
		g.Go(func() error {
			if err := d.router.UploadPart(ctx, d.name, session, i+1, part); err != nil {
				return fmt.Errorf("upload part %d: %w", i+1, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, u.abort(ctx, err)
	}

	u.transition(ctx, stateCompleting)
	upload, err := d.router.CompleteUpload(ctx, d.name, session, final)
	if err != nil {
		return nil, u.abort(ctx, fmt.Errorf("complete upload: %w", err))
	}
	u.transition(ctx, stateDone)

	upload.Parts = len(chunks)
	return upload, nil
}

// abort ends the session after a failure. The returned error wraps cause;
// a failing abort is appended to it.
func (u *uploader) abort(ctx context.Context, cause error) error {
	u.transition(ctx, stateAborting, "cause", cause)

	err := fmt.Errorf("%w: %w", model.ErrUploadFailed.Fmt(u.name, "session aborted"), cause)

	// the session must be released even if ctx is what failed
	if abortErr := u.drive.router.AbortUpload(context.WithoutCancel(ctx), u.drive.name, u.session); abortErr != nil {
		err = multierr.Append(err, fmt.Errorf("abort upload %s: %w", u.session.UploadID, abortErr))
	}

	u.transition(ctx, stateAborted)
	u.logger.WarnContext(ctx, "upload aborted", "upload_id", u.session.UploadID, "error", err)
	return err
}

func splitChunks(data []byte, size int) [][]byte {
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for size < len(data) {
		data, chunks = data[size:], append(chunks, data[:size:size])
	}
	return append(chunks, data)
}
