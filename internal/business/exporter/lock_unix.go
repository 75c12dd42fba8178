//go:build unix

package exporter

import (
	"os"
	"syscall"
)

// lockFile 对导出文件加排他锁（flock，阻塞直至获得）
func lockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
}

// unlockFile 释放文件锁
func unlockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
