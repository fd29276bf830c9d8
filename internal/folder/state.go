package folder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const stateFileName = "state.json"

// State is the persisted viewer state
type State struct {
	LastFolderPath string `json:"last_folder_path"`
}

// Store persists State as JSON inside a directory
type Store struct {
	fs     afero.Fs
	dir    string
	logger logrus.FieldLogger
}

// NewStore creates a store writing to dir on the OS filesystem
func NewStore(dir string, logger logrus.FieldLogger) *Store {
	return NewStoreFs(afero.NewOsFs(), dir, logger)
}

// NewStoreFs creates a store on an arbitrary filesystem
func NewStoreFs(fs afero.Fs, dir string, logger logrus.FieldLogger) *Store {
	return &Store{fs: fs, dir: dir, logger: logger}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, stateFileName)
}

// LastFolder returns the remembered folder after validating it, or "" when
// nothing valid is stored. Rejections are logged, not returned.
func (s *Store) LastFolder() string {
	st, err := s.load()
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Failed to read saved state")
		}
		return ""
	}
	if st.LastFolderPath == "" {
		s.logger.Info("No previous folder saved")
		return ""
	}
	if err := ValidateLastFolder(st.LastFolderPath); err != nil {
		s.logger.WithError(err).WithField("path", st.LastFolderPath).Warn("Ignoring saved folder")
		return ""
	}
	return st.LastFolderPath
}

// SaveLastFolder remembers path for the next start
func (s *Store) SaveLastFolder(path string) error {
	st, err := s.load()
	if err != nil {
		st = &State{}
	}
	st.LastFolderPath = path
	return s.save(st)
}

func (s *Store) load() (*State, error) {
	data, err := afero.ReadFile(s.fs, s.path())
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path(), err)
	}
	return &st, nil
}

func (s *Store) save(st *State) error {
	if err := s.fs.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return s.fs.Rename(tmp, s.path())
}
