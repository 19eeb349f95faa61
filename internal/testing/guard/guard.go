package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PRINTLOOM_TEST_MODE") == "" {
			_ = os.Setenv("PRINTLOOM_TEST_MODE", "1")
		}
	})
}
