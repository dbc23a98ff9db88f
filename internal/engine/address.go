package engine

import "github.com/roach88/bitshub/internal/domain"

// addAddress appends an address with a fresh id. The first address is always
// the default. A later address may claim IsDefault without demoting the
// previous default.
func (r *reducer) addAddress(a AddAddress) error {
	u := r.s.userRecord(a.UserID)
	if u == nil {
		return nil
	}
	addr := a.Address
	addr.ID = r.ids.NewID()
	if len(u.Addresses) == 0 {
		addr.IsDefault = true
	}
	u.Addresses = append(u.Addresses, addr)
	r.out.CreatedID = addr.ID
	return nil
}

// updateAddress replaces the entry with the same id. Defaults are not
// re-balanced.
func (r *reducer) updateAddress(a UpdateAddress) error {
	u := r.s.userRecord(a.UserID)
	if u == nil {
		return nil
	}
	for i := range u.Addresses {
		if u.Addresses[i].ID == a.Address.ID {
			u.Addresses[i] = a.Address
		}
	}
	return nil
}

// deleteAddress removes an entry. Deleting the default does not promote
// another address.
func (r *reducer) deleteAddress(a DeleteAddress) error {
	u := r.s.userRecord(a.UserID)
	if u == nil {
		return nil
	}
	kept := make([]domain.Address, 0, len(u.Addresses))
	for _, addr := range u.Addresses {
		if addr.ID != a.AddressID {
			kept = append(kept, addr)
		}
	}
	u.Addresses = kept
	return nil
}

// setDefaultAddress leaves exactly the named address flagged default.
func (r *reducer) setDefaultAddress(a SetDefaultAddress) error {
	u := r.s.userRecord(a.UserID)
	if u == nil {
		return nil
	}
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = u.Addresses[i].ID == a.AddressID
	}
	return nil
}
