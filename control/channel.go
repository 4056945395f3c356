package control

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"pkt.systems/pslog"

	"github.com/iw2rmb/quill"
)

var (
	// ErrNoRequest reports that no request file was present.
	ErrNoRequest = errors.New("no request")
	// ErrStale reports a request whose identity was already consumed.
	ErrStale = errors.New("request already consumed")
)

// Phase is the channel's position in the request cycle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseRequestDetected
	PhaseValidating
	PhaseApplying
	PhaseResponseWritten
)

func (p Phase) String() string {
	switch p {
	case PhaseRequestDetected:
		return "request_detected"
	case PhaseValidating:
		return "validating"
	case PhaseApplying:
		return "applying"
	case PhaseResponseWritten:
		return "response_written"
	default:
		return "idle"
	}
}

// Artifact is what Check observed about the request file.
type Artifact struct {
	Path    string
	ModTime time.Time
	Size    int64
}

type Options struct {
	// Dir is the control directory; empty selects DefaultDir.
	Dir    string
	Logger pslog.Logger
	Collaborators
	// Now defaults to time.Now.
	Now func() time.Time
}

// Channel consumes staged requests. It is driven from the host's event loop
// and is not safe for concurrent use.
type Channel struct {
	paths Paths
	log   pslog.Logger
	col   Collaborators
	now   func() time.Time

	phase    Phase
	consumed Identity
}

func New(opt Options) (*Channel, error) {
	paths, err := ResolvePaths(opt.Dir)
	if err != nil {
		return nil, err
	}
	log := opt.Logger
	if log == nil {
		log = pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	}
	log = log.With("control_dir", paths.Dir, "agent", quill.UserAgent())
	now := opt.Now
	if now == nil {
		now = time.Now
	}

	consumed, err := loadLedger(paths.Ledger)
	if err != nil {
		// A corrupt ledger only weakens replay protection for one request.
		log.Warn("control ledger unreadable", "path", paths.Ledger, "err", err)
		consumed = Identity{}
	}
	return &Channel{
		paths:    paths,
		log:      log,
		col:      opt.Collaborators,
		now:      now,
		consumed: consumed,
	}, nil
}

func (c *Channel) Paths() Paths { return c.paths }

func (c *Channel) Phase() Phase { return c.phase }

// Check reports whether a request file is present. It only stats the file;
// telling a fresh request from a consumed one is left to Process.
func (c *Channel) Check() (Artifact, bool) {
	info, err := os.Stat(c.paths.Request)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Warn("control request stat failed", "err", err)
		}
		return Artifact{}, false
	}
	if info.IsDir() {
		return Artifact{}, false
	}
	c.phase = PhaseRequestDetected
	return Artifact{Path: c.paths.Request, ModTime: info.ModTime(), Size: info.Size()}, true
}

// Process reads the request Check found, applies it to eng and writes the
// response. The request identity is persisted before anything is applied.
// I/O failures return an error and leave the request in place for the next
// cycle, except after the identity was persisted.
func (c *Channel) Process(a Artifact, eng Engine) (Response, error) {
	defer func() { c.phase = PhaseIdle }()
	c.phase = PhaseRequestDetected

	raw, modTime, err := readRequest(a.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Response{}, ErrNoRequest
		}
		c.log.Warn("control request read failed", "err", err)
		return Response{}, fmt.Errorf("read request: %w", err)
	}

	id := newIdentity(raw, modTime)
	if id.Equal(c.consumed) {
		c.log.Debug("control request stale", "sha256", id.Digest)
		c.removeRequest()
		return Response{}, ErrStale
	}
	if err := saveLedger(c.paths.Ledger, id, c.now()); err != nil {
		c.log.Warn("control ledger write failed", "err", err)
		return Response{}, fmt.Errorf("record request: %w", err)
	}
	c.consumed = id

	c.phase = PhaseValidating
	b, perr := parseBatch(raw)

	var out Outcome
	if perr != nil {
		c.log.Warn("control request rejected", "sha256", id.Digest, "err", perr)
		out = Outcome{Status: StatusError, Applied: []string{}, Err: perr}
	} else {
		c.phase = PhaseApplying
		out = applyBatch(b, eng, c.col)
		for _, s := range out.Skipped {
			c.log.Info("control command skipped", "index", s.Index, "type", s.Type, "err", s.Err)
		}
	}

	errMsg := ""
	if out.Err != nil {
		errMsg = out.Err.Error()
	}
	resp := BuildResponse(CaptureState(eng, c.col.Status), out.Status, out.Applied, errMsg, c.now())
	if err := WriteResponse(c.paths.Response, resp); err != nil {
		c.log.Warn("control response write failed", "err", err)
		return resp, fmt.Errorf("write response: %w", err)
	}
	c.phase = PhaseResponseWritten
	c.removeRequest()

	c.log.Info("control request handled",
		"status", resp.Status,
		"applied", len(resp.Applied),
		"skipped", len(out.Skipped),
	)
	return resp, nil
}

// Handle checks for a request and processes it if present. It reports
// whether a response was written.
func (c *Channel) Handle(eng Engine) (Response, bool, error) {
	a, ok := c.Check()
	if !ok {
		return Response{}, false, nil
	}
	resp, err := c.Process(a, eng)
	switch {
	case errors.Is(err, ErrNoRequest), errors.Is(err, ErrStale):
		return Response{}, false, nil
	case err != nil:
		return resp, false, err
	}
	return resp, true, nil
}

func (c *Channel) removeRequest() {
	if err := RemoveRequest(c.paths); err != nil {
		c.log.Warn("control request remove failed", "err", err)
	}
}

func readRequest(path string) ([]byte, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, err
	}
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, time.Time{}, err
	}
	return raw, info.ModTime(), nil
}
