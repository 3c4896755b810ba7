package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/storage/memory"
	"github.com/yndnr/quizrally-go/internal/storage/snapshot"
)

// loadedSnapshot is a snapshot file read into a fresh store.
type loadedSnapshot struct {
	Record *snapshot.Record
	Info   *snapshot.Info
	Store  *memory.Store
}

// loadSnapshot reads the snapshot file named by the global flags and
// config. A missing file is an error here: offline commands have
// nothing to work on.
func loadSnapshot(c *cli.Context) (*loadedSnapshot, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	f, err := snapshot.NewFile(snapshot.Config{
		Dir:      cfg.Storage.DataDir,
		FileName: cfg.Storage.FileName,
	})
	if err != nil {
		return nil, err
	}

	rec, info, err := f.Load()
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, fmt.Errorf("no snapshot at %s", f.Path())
		}
		return nil, err
	}
	verbosef(c, "loaded %s (%d bytes)", info.Path, info.Size)

	st := memory.New()
	rec.Apply(st)
	return &loadedSnapshot{Record: rec, Info: info, Store: st}, nil
}

// InspectResult summarizes a snapshot file.
type InspectResult struct {
	Path      string         `json:"path"`
	Size      int64          `json:"size"`
	Timestamp time.Time      `json:"timestamp"`
	Age       string         `json:"age" table:"wide"`
	Tables    map[string]int `json:"tables"`
}

// InspectCommand shows the size, timestamp and table counts of the
// snapshot file.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:   "inspect",
		Usage:  "Show snapshot file metadata and table counts",
		Action: inspect,
	}
}

func inspect(c *cli.Context) error {
	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}

	res := InspectResult{
		Path:      snap.Info.Path,
		Size:      snap.Info.Size,
		Timestamp: snap.Info.Timestamp,
		Tables:    snap.Info.Counts,
	}
	if !res.Timestamp.IsZero() {
		res.Age = time.Since(res.Timestamp).Round(time.Second).String()
	}
	return render(c, res, nil)
}
