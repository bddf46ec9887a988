package services

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"olist-dashboard/internal/models"
)

const snapshotVersion = "v1"

var errSnapshotDisabled = errors.New("snapshots disabled")

// snapshot is the gob payload written after a successful CSV parse.
type snapshot struct {
	Orders    []models.OrderRecord
	Segments  []models.SegmentRecord
	CreatedAt time.Time
}

type snapshotStore struct {
	dir string
}

func newSnapshotStore(dir string) *snapshotStore {
	return &snapshotStore{dir: dir}
}

func (s *snapshotStore) filename(ordersPath, segmentsPath string) string {
	key := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(ordersPath + "+" + segmentsPath)
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.gob", key, snapshotVersion))
}

func (s *snapshotStore) save(ordersPath, segmentsPath string, snap snapshot) error {
	if s.dir == "" {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(s.filename(ordersPath, segmentsPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snap)
}

// load returns a snapshot only while neither source file changed after it
// was written.
func (s *snapshotStore) load(ordersPath, segmentsPath string) (*snapshot, error) {
	if s.dir == "" {
		return nil, errSnapshotDisabled
	}

	file, err := os.Open(s.filename(ordersPath, segmentsPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}

	for _, path := range []string{ordersPath, segmentsPath} {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.ModTime().Before(snap.CreatedAt) {
			return nil, fmt.Errorf("snapshot older than %s", path)
		}
	}

	return &snap, nil
}
