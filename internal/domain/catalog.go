package domain

import (
	"fmt"
	"strings"
)

var menu = []MenuItem{
	{ID: "1", Name: "Gold Leaf Espresso", Description: "Our signature single-origin espresso with a delicate crema.", Price: 3.50, Category: CategoryCoffee, Image: "https://picsum.photos/id/1060/400/300"},
	{ID: "2", Name: "Velvet Latte", Description: "Silky steamed milk poured over rich espresso with a touch of vanilla.", Price: 4.75, Category: CategoryCoffee, Image: "https://picsum.photos/id/1083/400/300"},
	{ID: "3", Name: "Midnight Cold Brew", Description: "Steeped for 24 hours for a smooth, bold, chocolatey finish.", Price: 5.00, Category: CategoryCoffee, Image: "https://picsum.photos/id/766/400/300"},
	{ID: "4", Name: "Caramel Macchiato", Description: "Freshly steamed milk with vanilla-flavored syrup marked with espresso and topped with a caramel drizzle.", Price: 5.50, Category: CategorySpecialty, Image: "https://picsum.photos/id/425/400/300"},
	{ID: "5", Name: "Golden Croissant", Description: "Buttery, flaky, and baked fresh every morning.", Price: 3.25, Category: CategoryPastry, Image: "https://picsum.photos/id/656/400/300"},
	{ID: "6", Name: "Matcha Bliss", Description: "Premium ceremonial grade matcha whisked with oat milk.", Price: 5.25, Category: CategoryTea, Image: "https://picsum.photos/id/431/400/300"},
}

// Menu returns a copy of the catalog.
func Menu() []MenuItem {
	out := make([]MenuItem, len(menu))
	copy(out, menu)
	return out
}

func FindMenuItem(id string) (MenuItem, bool) {
	for _, m := range menu {
		if m.ID == id {
			return m, true
		}
	}
	return MenuItem{}, false
}

// MenuListing renders the catalog as "- name: description" lines.
func MenuListing() string {
	var b strings.Builder
	for _, m := range menu {
		fmt.Fprintf(&b, "- %s: %s\n", m.Name, m.Description)
	}
	return b.String()
}
