package repository

import (
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/shopspring/decimal"
)

// Seed data for a fresh console. Every adapter starts from the same rows.

func SeedMenuItems() []models.MenuItem {
	return []models.MenuItem{
		{ID: 1, Name: "Caesar Salad", Category: "appetizers", Price: money("8.99"), Image: "🥗", Available: true, Description: "Crisp romaine, parmesan and croutons"},
		{ID: 2, Name: "Grilled Chicken", Category: "mains", Price: money("18.99"), Image: "🍗", Available: true, Description: "Herb marinated chicken breast with greens"},
		{ID: 3, Name: "Beef Burger", Category: "mains", Price: money("14.99"), Image: "🍔", Available: true, Description: "Angus patty, cheddar and house sauce"},
		{ID: 4, Name: "Chocolate Cake", Category: "desserts", Price: money("6.99"), Image: "🍰", Available: true, Description: "Rich dark chocolate layer cake"},
		{ID: 5, Name: "Iced Tea", Category: "beverages", Price: money("3.99"), Image: "🧊", Available: true, Description: "Fresh brewed and lightly sweetened"},
		{ID: 6, Name: "French Fries", Category: "appetizers", Price: money("5.99"), Image: "🍟", Available: true, Description: "Golden fries with sea salt"},
		{ID: 7, Name: "Pasta Carbonara", Category: "mains", Price: money("16.99"), Image: "🍝", Available: true, Description: "Spaghetti, pancetta, egg and pecorino"},
		{ID: 8, Name: "Cheesecake", Category: "desserts", Price: money("7.99"), Image: "🧁", Available: false, Description: "New York style with berry compote"},
	}
}

func SeedCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "appetizers", Description: "Starters and small plates"},
		{ID: 2, Name: "mains", Description: "Main course dishes"},
		{ID: 3, Name: "desserts", Description: "Sweet treats and desserts"},
		{ID: 4, Name: "beverages", Description: "Drinks and refreshments"},
	}
}

func SeedFloors() []models.Floor {
	return []models.Floor{
		{
			ID:   "ground",
			Name: "Ground Floor",
			Tables: []models.Table{
				occupied("t1", "T1", 4, models.TableOccupied, "#1001", "John D.", "10:30 AM", "45.00"),
				{ID: "t2", Number: "T2", Capacity: 2, Status: models.TableAvailable},
				{ID: "t3", Number: "T3", Capacity: 6, Status: models.TableReserved},
				occupied("t4", "T4", 4, models.TableBilling, "#1002", "Mike R.", "09:45 AM", "120.50"),
				{ID: "t5", Number: "T5", Capacity: 2, Status: models.TableAvailable},
				occupied("t6", "T6", 8, models.TableOccupied, "#1003", "Emily W.", "11:00 AM", "85.00"),
			},
		},
		{
			ID:   "first",
			Name: "First Floor",
			Tables: []models.Table{
				{ID: "t7", Number: "T7", Capacity: 4, Status: models.TableAvailable},
				occupied("t8", "T8", 4, models.TableOccupied, "#1004", "John D.", "11:30 AM", "0.00"),
				{ID: "t9", Number: "T9", Capacity: 10, Status: models.TableReserved},
			},
		},
		{
			ID:   "outdoor",
			Name: "Outdoor",
			Tables: []models.Table{
				{ID: "o1", Number: "O1", Capacity: 4, Status: models.TableAvailable},
				{ID: "o2", Number: "O2", Capacity: 4, Status: models.TableAvailable},
				occupied("o3", "O3", 6, models.TableOccupied, "#1005", "Mike R.", "12:00 PM", "60.00"),
			},
		},
	}
}

// SeedOrders returns the registry most recent first
func SeedOrders() []models.Order {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	return []models.Order{
		{
			ID:     1001,
			Target: models.DineIn{FloorID: "ground", TableID: "t2", TableNumber: "T2"},
			Items: []models.OrderItem{
				{MenuItemID: 1, Name: "Caesar Salad", Quantity: 1, Price: money("8.99")},
				{MenuItemID: 2, Name: "Grilled Chicken", Quantity: 1, Price: money("14.99")},
				{MenuItemID: 5, Name: "Iced Tea", Quantity: 1, Price: money("2.99")},
			},
			Total:     money("26.97"),
			Status:    models.StatusPending,
			Time:      "10:30 AM",
			CreatedAt: day.Add(10*time.Hour + 30*time.Minute),
		},
		{
			ID:     1002,
			Target: models.DineIn{FloorID: "ground", TableID: "t3", TableNumber: "T3"},
			Items: []models.OrderItem{
				{MenuItemID: 3, Name: "Beef Burger", Quantity: 1, Price: money("12.99")},
				{MenuItemID: 6, Name: "French Fries", Quantity: 1, Price: money("4.50")},
			},
			Total:     money("17.49"),
			Status:    models.StatusPreparing,
			Time:      "10:15 AM",
			CreatedAt: day.Add(10*time.Hour + 15*time.Minute),
		},
		{
			ID:     1003,
			Target: models.DineOut{CustomerName: "John Doe"},
			Items: []models.OrderItem{
				{MenuItemID: 7, Name: "Pasta Carbonara", Quantity: 1, Price: money("13.50")},
				{MenuItemID: 4, Name: "Chocolate Cake", Quantity: 1, Price: money("6.99")},
			},
			Total:     money("20.49"),
			Status:    models.StatusReady,
			Time:      "10:00 AM",
			CreatedAt: day.Add(10 * time.Hour),
		},
	}
}

func SeedStaff() []models.StaffMember {
	return []models.StaffMember{
		{ID: 1, Name: "John Doe", Role: models.RoleCashier, Email: "john@restaurant.com", Phone: "+1 234 567 8901", Status: models.StaffActive, Avatar: "JD"},
		{ID: 2, Name: "Jane Smith", Role: models.RoleManager, Email: "jane@restaurant.com", Phone: "+1 234 567 8902", Status: models.StaffActive, Avatar: "JS"},
		{ID: 3, Name: "Mike Johnson", Role: models.RoleChef, Email: "mike@restaurant.com", Phone: "+1 234 567 8903", Status: models.StaffOnBreak, Avatar: "MJ"},
		{ID: 4, Name: "Sarah Williams", Role: models.RoleWaiter, Email: "sarah@restaurant.com", Phone: "+1 234 567 8904", Status: models.StaffActive, Avatar: "SW"},
		{ID: 5, Name: "Tom Brown", Role: models.RoleCleaner, Email: "tom@restaurant.com", Phone: "+1 234 567 8905", Status: models.StaffOffDuty, Avatar: "TB"},
		{ID: 6, Name: "Emily Davis", Role: models.RoleWaiter, Email: "emily@restaurant.com", Phone: "+1 234 567 8906", Status: models.StaffActive, Avatar: "ED"},
	}
}

func occupied(id, number string, capacity int, status models.TableStatus, orderID, waiter, seated, total string) models.Table {
	return models.Table{
		ID:       id,
		Number:   number,
		Capacity: capacity,
		Status:   status,
		Occupancy: &models.Occupancy{
			OrderID:    orderID,
			Waiter:     waiter,
			TimeSeated: seated,
			Total:      money(total),
		},
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
