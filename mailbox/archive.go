package mailbox

import (
	"archive/zip"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/oklog/ulid/v2"

	"github.com/openack/openack"
	"github.com/openack/openack/envelope"
)

// archive moves one consumed envelope and its attachments out of the
// inbox and records them as a single zip under done/.
//
// The envelope file is renamed into a fresh staging directory first.
// That rename is the commit point: once the file leaves inbox/, no
// later scan can deliver it again. Attachment renames and zip
// creation then work from the staging copy, so a crash at any point
// leaves the envelope's artifacts in exactly one recoverable place.
func (s *Store) archive(agent openack.Agent, envName string, refs []openack.AttachmentRef) error {
	inbox, err := s.inboxPath(agent)
	if err != nil {
		return err
	}
	done, err := s.donePath(agent)
	if err != nil {
		return err
	}
	processing, err := s.processingPath(agent)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(done, 0o700); err != nil {
		return storageError("create done dir", err)
	}
	staging := filepath.Join(processing, ulid.Make().String())
	if err := os.MkdirAll(staging, 0o700); err != nil {
		return storageError("create staging dir", err)
	}

	if err := os.Rename(filepath.Join(inbox, envName), filepath.Join(staging, envName)); err != nil {
		return storageError("stage envelope", err)
	}
	for _, ref := range refs {
		err := os.Rename(filepath.Join(inbox, ref.StorageName), filepath.Join(staging, ref.StorageName))
		if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return storageError("stage attachment", err)
		}
	}

	if err := zipDir(staging, filepath.Join(done, envelope.ArchiveName(envName))); err != nil {
		return err
	}
	if err := os.RemoveAll(staging); err != nil {
		return storageError("remove staging dir", err)
	}
	return nil
}

// recoverStaged completes the archive step for staging directories
// left behind by a crash. Staging names are ULIDs, so the sorted
// directory listing replays transactions oldest first. Must be called
// with the mailbox lock held.
func (s *Store) recoverStaged(agent openack.Agent) error {
	processing, err := s.processingPath(agent)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(processing)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return storageError("list staging dirs", err)
	}

	done, err := s.donePath(agent)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		staging := filepath.Join(processing, entry.Name())
		files, err := os.ReadDir(staging)
		if err != nil {
			return storageError("list staging dir", err)
		}

		if len(files) > 0 {
			// Name the archive after the staged envelope file; fall
			// back to the transaction id if only attachments remain.
			zipName := entry.Name() + ".zip"
			for _, f := range files {
				if envelope.IsEnvelopeName(f.Name()) {
					zipName = envelope.ArchiveName(f.Name())
					break
				}
			}
			if err := os.MkdirAll(done, 0o700); err != nil {
				return storageError("create done dir", err)
			}
			if err := zipDir(staging, filepath.Join(done, zipName)); err != nil {
				return err
			}
		}
		if err := os.RemoveAll(staging); err != nil {
			return storageError("remove staging dir", err)
		}
		s.log.Info("recovered staged archive", "agent", agent, "transaction", entry.Name())
	}
	return nil
}

// zipDir writes every regular file in dir into a zip at zipPath,
// member names equal to base filenames with no path prefix. It writes
// to a temporary file and renames on success so a partial archive is
// never left at zipPath.
func zipDir(dir, zipPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return storageError("list archive contents", err)
	}

	tmpPath := zipPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return storageError("create archive", err)
	}

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := addFileToZip(zw, filepath.Join(dir, entry.Name())); err != nil {
			_ = zw.Close()
			_ = f.Close()
			_ = os.Remove(tmpPath)
			return storageError("add archive member", err)
		}
	}

	if err := zw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return storageError("close archive writer", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return storageError("close archive", err)
	}
	if err := os.Rename(tmpPath, zipPath); err != nil {
		_ = os.Remove(tmpPath)
		return storageError("rename archive", err)
	}
	return nil
}

// addFileToZip adds a single file to an open zip.Writer using only
// the base name.
func addFileToZip(zw *zip.Writer, filePath string) error {
	in, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	w, err := zw.Create(filepath.Base(filePath))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
