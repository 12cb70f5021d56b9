package expense

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Bucket is a running INR total with the number of expenses in it.
type Bucket struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

func (b *Bucket) add(amount decimal.Decimal) {
	b.Amount = b.Amount.Add(amount)
	b.Count++
}

// StatusSummary totals expenses overall and per status.
type StatusSummary struct {
	Total    Bucket            `json:"total"`
	ByStatus map[Status]Bucket `json:"byStatus"`
}

// SummarizeByStatus totals expenses by status. The employer view passes
// includeDrafts=false so unsubmitted drafts stay out of every total.
func SummarizeByStatus(expenses []Expense, includeDrafts bool) StatusSummary {
	summary := StatusSummary{ByStatus: make(map[Status]Bucket, len(Statuses))}
	for _, st := range Statuses {
		if st == StatusDraft && !includeDrafts {
			continue
		}
		summary.ByStatus[st] = Bucket{Amount: decimal.Zero}
	}
	summary.Total.Amount = decimal.Zero

	for i := range expenses {
		e := &expenses[i]
		if e.Status == StatusDraft && !includeDrafts {
			continue
		}
		amount := e.AmountINR()
		summary.Total.add(amount)
		if b, ok := summary.ByStatus[e.Status]; ok {
			b.add(amount)
			summary.ByStatus[e.Status] = b
		}
	}
	return summary
}

// CategoryTotal is one line of the category summary.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
	// Share is the percentage of the grand total, to two places.
	Share decimal.Decimal `json:"share"`
}

type CategorySummary struct {
	Categories []CategoryTotal `json:"categories"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

var hundred = decimal.NewFromInt(100)

// SummarizeByCategory totals expenses per category, largest first.
func SummarizeByCategory(expenses []Expense) CategorySummary {
	buckets := map[string]*Bucket{}
	grand := decimal.Zero
	for i := range expenses {
		e := &expenses[i]
		b, ok := buckets[e.Category]
		if !ok {
			b = &Bucket{Amount: decimal.Zero}
			buckets[e.Category] = b
		}
		amount := e.AmountINR()
		b.add(amount)
		grand = grand.Add(amount)
	}

	lines := make([]CategoryTotal, 0, len(buckets))
	for category, b := range buckets {
		share := decimal.Zero
		if !grand.IsZero() {
			share = b.Amount.Mul(hundred).Div(grand).Round(2)
		}
		lines = append(lines, CategoryTotal{Category: category, Amount: b.Amount, Count: b.Count, Share: share})
	}
	sort.Slice(lines, func(i, j int) bool {
		if c := lines[i].Amount.Cmp(lines[j].Amount); c != 0 {
			return c > 0
		}
		return lines[i].Category < lines[j].Category
	})
	return CategorySummary{Categories: lines, GrandTotal: grand}
}

type EmployeeTotal struct {
	EmployeeID string          `json:"employeeId"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
}

type ProjectTotal struct {
	ProjectID string          `json:"projectId"`
	Amount    decimal.Decimal `json:"amount"`
	Count     int             `json:"count"`
	Employees []EmployeeTotal `json:"employees"`
}

// SummarizeByProject totals expenses per project with a per-employee
// breakdown. Projects and employees are ordered by ID.
func SummarizeByProject(expenses []Expense) []ProjectTotal {
	projects := map[string]map[string]*Bucket{}
	for i := range expenses {
		e := &expenses[i]
		employees, ok := projects[e.ProjectID]
		if !ok {
			employees = map[string]*Bucket{}
			projects[e.ProjectID] = employees
		}
		b, ok := employees[e.EmployeeID]
		if !ok {
			b = &Bucket{Amount: decimal.Zero}
			employees[e.EmployeeID] = b
		}
		b.add(e.AmountINR())
	}

	result := make([]ProjectTotal, 0, len(projects))
	for projectID, employees := range projects {
		pt := ProjectTotal{ProjectID: projectID, Amount: decimal.Zero}
		for employeeID, b := range employees {
			pt.Amount = pt.Amount.Add(b.Amount)
			pt.Count += b.Count
			pt.Employees = append(pt.Employees, EmployeeTotal{EmployeeID: employeeID, Amount: b.Amount, Count: b.Count})
		}
		sort.Slice(pt.Employees, func(i, j int) bool {
			return pt.Employees[i].EmployeeID < pt.Employees[j].EmployeeID
		})
		result = append(result, pt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProjectID < result[j].ProjectID })
	return result
}
