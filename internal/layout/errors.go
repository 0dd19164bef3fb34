package layout

import (
	"errors"
	"fmt"

	"github.com/kyiku/tile-captcha/internal/input"
)

// ErrUnknownItem is returned for bounds queries on items the board does not hold.
var ErrUnknownItem = errors.New("item not on board")

func errUnknownItem(item input.ItemID) error {
	return fmt.Errorf("%w: %d", ErrUnknownItem, item)
}
