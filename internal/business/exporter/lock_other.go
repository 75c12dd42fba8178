//go:build !unix

package exporter

import "os"

// 非 unix 平台不提供 flock，降级为无锁写入

func lockFile(_ *os.File) error { return nil }

func unlockFile(_ *os.File) error { return nil }
