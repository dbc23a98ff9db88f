package engine

import "github.com/roach88/bitshub/internal/domain"

// addToCart merges on product id: an existing line gains one unit, a new
// product gets a line with quantity 1. There is no stock check; InStock is a
// display flag only.
func (r *reducer) addToCart(a AddToCart) error {
	product := a.Product
	if product.ID == "" && a.ProductID == "" {
		return reject(CodeProductNotFound, "add to cart needs a product or product id")
	}
	if product.ID == "" {
		p, ok := r.s.Product(a.ProductID)
		if !ok {
			return reject(CodeProductNotFound, "product not found", "product_id", a.ProductID)
		}
		product = p
	}

	merged := false
	for i := range r.s.Cart {
		if r.s.Cart[i].Product.ID == product.ID {
			r.s.Cart[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		r.s.Cart = append(r.s.Cart, domain.CartItem{Product: product, Quantity: 1})
	}

	r.s.AddedToCartUntil = r.now.Add(r.policy.AddedFlash)
	return nil
}

// updateCartQuantity sets a line's quantity directly. Zero (or less) removes
// the line.
func (r *reducer) updateCartQuantity(a UpdateCartQuantity) error {
	if a.Quantity <= 0 {
		return r.removeFromCart(a.ProductID)
	}
	for i := range r.s.Cart {
		if r.s.Cart[i].Product.ID == a.ProductID {
			r.s.Cart[i].Quantity = a.Quantity
		}
	}
	return nil
}

func (r *reducer) removeFromCart(productID string) error {
	kept := make([]domain.CartItem, 0, len(r.s.Cart))
	for _, item := range r.s.Cart {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	r.s.Cart = kept
	return nil
}
