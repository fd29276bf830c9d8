// Package accounts loads the account titles offered when composing a file
// name. Titles are kept in a user-editable CSV sorted by their reading.
package accounts

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	UserFileName    = "accounts.csv"
	DefaultFileName = "accounts_default.csv"
)

var header = []string{"勘定科目", "よみがな"}

// Account is one account title with its reading
type Account struct {
	Title    string `json:"title"`
	Yomigana string `json:"yomigana"`
}

// Defaults are used when no CSV is available
var Defaults = []Account{
	{"会議費", "かいぎひ"},
	{"外注費", "がいちゅうひ"},
	{"広告宣伝費", "こうこくせんでんひ"},
	{"交際費", "こうさいひ"},
	{"交通費", "こうつうひ"},
	{"消耗品費", "しょうもうひんひ"},
	{"水道光熱費", "すいどうこうねつひ"},
	{"地代家賃", "ちだいやちん"},
	{"通信費", "つうしんひ"},
	{"旅費交通費", "りょひこうつうひ"},
}

// Loader reads account titles from the filesystem
type Loader struct {
	fs     afero.Fs
	logger logrus.FieldLogger
}

// NewLoader creates a loader on the OS filesystem
func NewLoader(logger logrus.FieldLogger) *Loader {
	return NewLoaderFs(afero.NewOsFs(), logger)
}

// NewLoaderFs creates a loader on fs
func NewLoaderFs(fs afero.Fs, logger logrus.FieldLogger) *Loader {
	return &Loader{fs: fs, logger: logger}
}

// Load returns account titles sorted by reading. A missing user file is
// seeded from defaultPath when that exists, otherwise from Defaults. Any
// failure falls back to Defaults.
func (l *Loader) Load(userPath, defaultPath string) []string {
	if _, err := l.fs.Stat(userPath); os.IsNotExist(err) {
		if err := l.seed(userPath, defaultPath); err != nil {
			l.logger.WithError(err).WithField("path", userPath).Error("Failed to create accounts file")
			return Titles(sorted(Defaults))
		}
	}

	accounts, err := l.read(userPath)
	if err != nil {
		l.logger.WithError(err).WithField("path", userPath).Error("Failed to read accounts file")
		return Titles(sorted(Defaults))
	}
	if len(accounts) == 0 {
		l.logger.WithField("path", userPath).Warn("Accounts file is empty, using defaults")
		return Titles(sorted(Defaults))
	}

	l.logger.WithField("count", len(accounts)).Info("Loaded account titles")
	return Titles(sorted(accounts))
}

func (l *Loader) seed(userPath, defaultPath string) error {
	if err := l.fs.MkdirAll(filepath.Dir(userPath), 0o750); err != nil {
		return err
	}
	if defaultPath != "" {
		if data, err := afero.ReadFile(l.fs, defaultPath); err == nil {
			l.logger.WithField("from", defaultPath).Info("Copied default accounts file")
			return afero.WriteFile(l.fs, userPath, data, 0o600)
		}
	}
	return l.Write(userPath, Defaults)
}

// Write stores accounts as CSV with a header row, sorted by reading
func (l *Loader) Write(path string, accounts []Account) error {
	f, err := l.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, a := range sorted(accounts) {
		if err := w.Write([]string{a.Title, a.Yomigana}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (l *Loader) read(path string) ([]Account, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}

	var out []Account
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		title := strings.TrimSpace(row[0])
		if title == "" {
			continue
		}
		out = append(out, Account{Title: title, Yomigana: strings.TrimSpace(row[1])})
	}
	return out, nil
}

func sorted(accounts []Account) []Account {
	out := append([]Account(nil), accounts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Yomigana < out[j].Yomigana })
	return out
}

// Titles returns the account titles in order
func Titles(accounts []Account) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.Title
	}
	return out
}
