// Package notices collects user-facing acknowledgements raised by the
// marketplace store so a presentation layer can render them as toasts.
package notices

import (
	"context"
	"sync"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

const DefaultCapacity = 50

// Notice is a fire-and-forget acknowledgement.
type Notice struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Variant     enums.NoticeVariant `json:"variant"`
}

// Recorder keeps the most recent notices in a bounded ring.
type Recorder struct {
	mu    sync.Mutex
	buf   []Notice
	start int
	size  int
	logg  *logger.Logger
}

// NewRecorder returns a recorder holding at most capacity notices; older
// entries are overwritten once full.
func NewRecorder(capacity int, logg *logger.Logger) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Recorder{buf: make([]Notice, capacity), logg: logg}
}

// Notify records the notice and logs it.
func (r *Recorder) Notify(ctx context.Context, notice Notice) {
	if notice.Variant == "" {
		notice.Variant = enums.NoticeVariantDefault
	}

	r.mu.Lock()
	idx := (r.start + r.size) % len(r.buf)
	r.buf[idx] = notice
	if r.size < len(r.buf) {
		r.size++
	} else {
		r.start = (r.start + 1) % len(r.buf)
	}
	r.mu.Unlock()

	ctx = r.logg.WithFields(ctx, map[string]any{
		"notice_title":   notice.Title,
		"notice_variant": notice.Variant.String(),
	})
	r.logg.Debug(ctx, notice.Description)
}

// Drain returns pending notices oldest first and empties the buffer.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	r.start, r.size = 0, 0
	return out
}

// Len reports the number of pending notices.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
