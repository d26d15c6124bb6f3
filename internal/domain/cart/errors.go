// internal/domain/cart/errors.go
package cart

import "errors"

// Expected, recoverable outcomes of cart operations. Handlers map these to
// response codes; anything else is a storage failure surfaced generically.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("cart item not found")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
)
