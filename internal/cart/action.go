package cart

import "fmt"

// ActionType identifie une intention envoyée au panier.
type ActionType string

const (
	ActionAdd       ActionType = "ADD_ITEM"
	ActionIncrement ActionType = "INCREMENT_ITEM"
	ActionDecrement ActionType = "DECREMENT_ITEM"
	ActionRemove    ActionType = "REMOVE_ITEM"
	ActionClear     ActionType = "CLEAR_CART"
)

// Action est un message appliqué au panier par Apply.
type Action struct {
	Type    ActionType
	Product Product
}

func AddItem(p Product) Action       { return Action{Type: ActionAdd, Product: p} }
func IncrementItem(p Product) Action { return Action{Type: ActionIncrement, Product: p} }
func DecrementItem(id string) Action { return Action{Type: ActionDecrement, Product: Product{ID: id}} }
func RemoveItem(id string) Action    { return Action{Type: ActionRemove, Product: Product{ID: id}} }
func ClearCart() Action              { return Action{Type: ActionClear} }

// Apply exécute l'action et renvoie les lignes à jour. Seul un type
// d'action inconnu renvoie une erreur ; les opérations elles-mêmes sont totales.
func (c *Cart) Apply(a Action) ([]LineItem, error) {
	switch a.Type {
	case ActionAdd:
		return c.Add(a.Product), nil
	case ActionIncrement:
		return c.Increment(a.Product), nil
	case ActionDecrement:
		return c.Decrement(a.Product.ID), nil
	case ActionRemove:
		return c.Remove(a.Product.ID), nil
	case ActionClear:
		return c.Clear(), nil
	default:
		return c.Items(), fmt.Errorf("action panier inconnue: %q", a.Type)
	}
}

// NeedsProduct indique si l'action crée potentiellement une ligne et a donc
// besoin de l'instantané catalogue.
func (a Action) NeedsProduct() bool {
	return a.Type == ActionAdd || a.Type == ActionIncrement
}
