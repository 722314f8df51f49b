package models

type Address struct {
	UserID  string `json:"-"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Merge copie les champs non vides de patch.
func (a *Address) Merge(patch Address) {
	if patch.Street != "" {
		a.Street = patch.Street
	}
	if patch.City != "" {
		a.City = patch.City
	}
	if patch.State != "" {
		a.State = patch.State
	}
	if patch.ZipCode != "" {
		a.ZipCode = patch.ZipCode
	}
	if patch.Country != "" {
		a.Country = patch.Country
	}
}
