package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// readRows reads all CSV rows from path, verifying the header. A missing
// file is not an error: first-run bootstrap returns an empty collection.
func readRows(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.IO("open "+filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ValidationRow(filepath.Base(path), 1, err)
	}
	if !equalHeader(got, header) {
		return nil, errors.ValidationRow(filepath.Base(path), 1, fmt.Errorf("unexpected header %v", got))
	}

	var rows [][]string
	line := 1
	for {
		line++
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ValidationRow(filepath.Base(path), line, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// writeRowsAtomic replaces path with header+rows. The data is written to a
// temp file in the same directory, fsynced, then renamed over the target,
// so a concurrent reader outside the lock never observes a partial file.
func writeRowsAtomic(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.IO("create temp for "+filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	// On any failure below, leave the target untouched and clean up the temp.
	fail := func(op string, cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return errors.IO(op+" "+filepath.Base(path), cause)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fail("write", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fail("write", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fail("write", err)
	}

	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.IO("rename "+filepath.Base(path), err)
	}
	return nil
}

// appendRow appends a single row to path, writing the header first when the
// file does not exist yet. Atomicity across process crashes is not required
// here; serialized in-process access is guaranteed by the caller's lock.
func appendRow(path string, header []string, row []string) error {
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)
	if statErr != nil && !fresh {
		return errors.IO("stat "+filepath.Base(path), statErr)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.IO("open "+filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return errors.IO("write "+filepath.Base(path), err)
		}
	}
	if err := w.Write(row); err != nil {
		return errors.IO("write "+filepath.Base(path), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.IO("write "+filepath.Base(path), err)
	}
	return nil
}

func equalHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
