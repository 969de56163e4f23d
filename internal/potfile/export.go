package potfile

import (
	"bufio"
	"bytes"
	"io"

	"lovelyhashcat/internal/fileutil"
	"lovelyhashcat/internal/services"
)

// WriteResults writes entries as hash:password lines.
func WriteResults(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := bw.WriteString(e.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Export atomically replaces path with the given results.
func Export(path string, entries []Entry) error {
	var buf bytes.Buffer
	if err := WriteResults(&buf, entries); err != nil {
		return services.Wrap(services.ErrIO, "potfile", "export", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o600); err != nil {
		return services.Wrap(services.ErrIO, "potfile", "export", path, err)
	}
	return nil
}
