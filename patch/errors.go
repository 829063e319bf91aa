package patch

import "fmt"

func errFragmentf(msg string, args ...interface{}) error {
	return fmt.Errorf("patch: "+msg, args...)
}
