//go:build !linux && !darwin

package scanner

import "os"

func statSys(fi os.FileInfo, st *FileStat) {}
