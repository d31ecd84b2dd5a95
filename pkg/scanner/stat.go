package scanner

import (
	"os"

	"github.com/pkg/errors"
)

// FileStat carries the inode and millisecond timestamps of a file or
// directory. On platforms without a birth time the change time stands in.
type FileStat struct {
	Ino         uint64
	Size        int64
	MtimeMs     int64
	CtimeMs     int64
	BirthtimeMs int64
}

// Stat reads the stat attributes for path.
func Stat(path string) (*FileStat, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	st := &FileStat{
		Size:    fi.Size(),
		MtimeMs: fi.ModTime().UnixMilli(),
	}
	statSys(fi, st)
	if st.CtimeMs == 0 {
		st.CtimeMs = st.MtimeMs
	}
	if st.BirthtimeMs == 0 {
		st.BirthtimeMs = st.CtimeMs
	}
	return st, nil
}
