package api

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

var seedCategories = []model.CategoryInput{
	{Name: "AI News", Color: "#6366F1", Icon: "cpu", Description: "Model releases and research"},
	{Name: "Tech", Color: "#0EA5E9", Icon: "code", Description: "Engineering and tooling"},
	{Name: "Finance", Color: "#10B981", Icon: "chart", Description: "Markets and billing"},
	{Name: "Shopping", Color: "#F59E0B", Icon: "cart", Description: "Orders and deals"},
	{Name: "Events", Color: "#EF4444", Icon: "calendar", Description: "Invitations and meetups"},
}

var seedSenders = []struct{ name, email string }{
	{"The Batch", "batch@deeplearning.example"},
	{"Go Weekly", "editor@golangweekly.example"},
	{"", "noreply@bank.example"},
	{"Shop Updates", "orders@shop.example"},
	{"Meetup", "info@meetup.example"},
	{"Cloud Digest", "digest@cloud.example"},
}

var seedSubjects = []string{
	"New LLM benchmark results are in",
	"Agent frameworks compared",
	"Go 1.25 release notes",
	"Database indexing deep dive",
	"Your invoice for October",
	"Market close: stocks rally",
	"Flash sale ends tonight",
	"Your order has shipped",
	"Conference invite: GopherCon",
	"Webinar: scaling cloud APIs",
	"Neural search in production",
	"Rust and Go interop tips",
	"Payment received, thank you",
	"Weekend deal on headphones",
	"Local meetup this Thursday",
	"Quarterly budget review",
	"Model distillation explained",
	"Kernel scheduler changes",
	"Summit RSVP reminder",
	"Community newsletter",
}

// Seed fills d with a deterministic demo dataset: the standard categories,
// one email per subject spread over the last few days, and about half of
// the emails analyzed.
func Seed(d *Dataset, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for _, c := range seedCategories {
		if _, err := d.CreateCategory(c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}

	now := d.Now()

	var ids []string
	for i, subject := range seedSubjects {
		sender := seedSenders[rng.IntN(len(seedSenders))]
		received := now.Add(-time.Duration(i)*5*time.Hour - time.Duration(rng.IntN(60))*time.Minute)
		e := d.AddEmail(model.Email{
			ID:          fmt.Sprintf("email-%03d", i+1),
			Subject:     subject,
			SenderEmail: sender.email,
			SenderName:  sender.name,
			ReceivedAt:  received.Truncate(time.Second),
		})
		ids = append(ids, e.ID)
	}

	for _, id := range ids {
		if rng.IntN(2) == 0 {
			continue
		}
		if _, err := d.Analyze(id); err != nil {
			return fmt.Errorf("seed analysis %s: %w", id, err)
		}
	}
	return nil
}
