//go:build tools

package intellecta

import (
	_ "github.com/dmarkham/enumer"
)
