package rename

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
	"github.com/mrhoge/invoice-renamer/internal/folder"
)

const WorkDir = "work"

// BackupResult lists the files copied into work/
type BackupResult struct {
	WorkDir string                `json:"work_dir"`
	Copied  []string              `json:"copied"`
	Failed  *apperrors.Collection `json:"failed"`
}

// Backup copies every PDF in dir into dir/work, overwriting older copies. A
// failing file is recorded and the rest continue.
func Backup(dir string, logger logrus.FieldLogger) (*BackupResult, error) {
	work := filepath.Join(dir, WorkDir)
	if err := os.MkdirAll(work, 0o750); err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "backup", err).WithFile(work)
	}

	names, err := folder.ListPDFs(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "backup", err).WithFile(dir)
	}

	result := &BackupResult{
		WorkDir: work,
		Copied:  make([]string, 0, len(names)),
		Failed:  apperrors.NewCollection("backup"),
	}
	for _, name := range names {
		if err := CopyFile(filepath.Join(dir, name), filepath.Join(work, name)); err != nil {
			logger.WithError(err).WithField("file", name).Warn("Backup copy failed")
			result.Failed.Add(apperrors.Wrap(apperrors.ClassifyFile(err), "backup", err).WithFile(name))
			continue
		}
		result.Copied = append(result.Copied, name)
	}

	logger.WithFields(logrus.Fields{
		"work_dir": work,
		"copied":   len(result.Copied),
	}).Info(fmt.Sprintf("Backed up %d file(s)", len(result.Copied)))
	return result, nil
}
