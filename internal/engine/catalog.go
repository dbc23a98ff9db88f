package engine

import "github.com/roach88/bitshub/internal/domain"

// addProduct appends to the catalog. Id collisions are not checked.
func (r *reducer) addProduct(a AddProduct) error {
	p := a.Product
	p.ID = r.newID(p.ID)
	r.s.Products = append(r.s.Products, p)
	r.out.CreatedID = p.ID
	return nil
}

func (r *reducer) updateProduct(a UpdateProduct) error {
	for i := range r.s.Products {
		if r.s.Products[i].ID == a.Product.ID {
			r.s.Products[i] = a.Product
		}
	}
	return nil
}

func (r *reducer) deleteProduct(a DeleteProduct) error {
	kept := make([]domain.Product, 0, len(r.s.Products))
	for _, p := range r.s.Products {
		if p.ID != a.ProductID {
			kept = append(kept, p)
		}
	}
	r.s.Products = kept
	return nil
}
