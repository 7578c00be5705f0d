package handlers

import (
	"strings"

	"azv-admin-api/models"
	"azv-admin-api/pkg/listview"

	"golang.org/x/text/language"
)

// Dashboard lists are in Russian; names collate accordingly.
var listLanguage = language.Russian

var (
	branchSchema = listview.NewSchema[models.Branch](listLanguage).
			String("name", func(b models.Branch) any { return b.Name }).
			String("address", func(b models.Branch) any { return b.Address }).
			Number("employeesCount", func(b models.Branch) any { return b.EmployeesCount }).
			Phone("responsible_senior_barista_phone", func(b models.Branch) any { return b.ResponsiblePhone }).
			Number("bonuses", func(b models.Branch) any { return b.Bonuses }).
			String("contactPerson", func(b models.Branch) any { return b.ContactPerson }).
			Searchable("name", "address", "responsible_senior_barista_phone")

	employeeSchema = listview.NewSchema[models.Employee](listLanguage).
			String("name", func(e models.Employee) any { return e.Name }).
			String("company", func(e models.Employee) any { return e.Company }).
			Phone("phone", func(e models.Employee) any { return e.Phone }).
			String("role", func(e models.Employee) any { return e.RoleLabel }).
			Searchable("name", "company", "phone")

	guestSchema = listview.NewSchema[models.Guest](listLanguage).
			String("name", func(g models.Guest) any { return g.FullName() }).
			String("first_name", func(g models.Guest) any { return g.FirstName }).
			String("last_name", func(g models.Guest) any { return g.LastName }).
			Phone("phone", func(g models.Guest) any { return g.Phone }).
			String("rank", func(g models.Guest) any { return g.Rank }).
			Number("points", func(g models.Guest) any { return g.Points }).
			Number("coffee_count", func(g models.Guest) any { return g.CoffeeCount }).
			Number("total_spent", func(g models.Guest) any { return g.TotalSpent }).
			Date("registration_date", func(g models.Guest) any { return g.RegistrationDate }).
			Date("lastVisit", func(g models.Guest) any { return g.LastVisit }).
			Searchable("name", "phone")

	feedbackSchema = listview.NewSchema[models.Feedback](listLanguage).
			Date("created_at", func(f models.Feedback) any { return f.CreatedAt }).
			String("type", func(f models.Feedback) any { return string(f.Type) }).
			String("text", func(f models.Feedback) any { return f.Text }).
			String("user", func(f models.Feedback) any { return feedbackAuthor(f.User) }).
			Phone("phone", func(f models.Feedback) any { return f.User.Phone }).
			String("coffee_shop", func(f models.Feedback) any { return f.CoffeeShop.Name }).
			Searchable("text", "user", "phone", "coffee_shop")

	menuItemSchema = listview.NewSchema[models.MenuItem](listLanguage).
			String("name", func(m models.MenuItem) any { return m.Name }).
			Number("price", func(m models.MenuItem) any { return menuPrice(m) }).
			Bool("is_active", func(m models.MenuItem) any { return m.IsActive }).
			String("description", func(m models.MenuItem) any { return m.Description }).
			String("ingredients", func(m models.MenuItem) any { return m.Ingredients }).
			Searchable("name", "description", "ingredients")
)

var (
	branchDefaults   = listDefaults{Sort: listview.SortSpec{Field: "name", Direction: listview.Asc}, PageSize: 5}
	employeeDefaults = listDefaults{Sort: listview.SortSpec{Field: "name", Direction: listview.Asc}, PageSize: 5}
	guestDefaults    = listDefaults{Sort: listview.SortSpec{Field: "name", Direction: listview.Asc}, PageSize: 10}
	feedbackDefaults = listDefaults{Sort: listview.SortSpec{Field: "created_at", Direction: listview.Desc}, PageSize: 10}
	menuDefaults     = listDefaults{Sort: listview.SortSpec{Field: "name", Direction: listview.Asc}, PageSize: 25}
)

// feedbackAuthor is what the "user" column shows: the author and their phone.
func feedbackAuthor(u models.FeedbackUser) string {
	return strings.TrimSpace(u.DisplayName() + " " + u.Phone)
}

// menuPrice is nil for items without an offer so they compare equal to everything.
func menuPrice(m models.MenuItem) any {
	if m.Offer == nil {
		return nil
	}
	if p, ok := m.Offer.MinPrice(); ok {
		return p
	}
	return nil
}
