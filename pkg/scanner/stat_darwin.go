//go:build darwin

package scanner

import (
	"os"
	"syscall"
)

func statSys(fi os.FileInfo, st *FileStat) {
	sys, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	st.Ino = sys.Ino
	st.CtimeMs = sys.Ctimespec.Sec*1000 + sys.Ctimespec.Nsec/1e6
	st.BirthtimeMs = sys.Birthtimespec.Sec*1000 + sys.Birthtimespec.Nsec/1e6
}
