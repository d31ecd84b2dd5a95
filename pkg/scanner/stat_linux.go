//go:build linux

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
	st.CtimeMs = sys.Ctim.Sec*1000 + sys.Ctim.Nsec/1e6
}
