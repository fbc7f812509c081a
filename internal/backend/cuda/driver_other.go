//go:build !linux

package cuda

import (
	"fmt"
	"runtime"
)

func loadDriver() (driver, error) {
	return nil, fmt.Errorf("load libcuda: not supported on %s", runtime.GOOS)
}
