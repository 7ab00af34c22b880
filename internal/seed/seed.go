// internal/seed/seed.go
package seed

import (
	"context"
	"log"

	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
)

// SeedData creates a small sample org chart so development environments
// have something to render. Skipped when the document already has content.
func SeedData(repo repository.OrgChartRepository) {
	ctx := context.Background()

	doc, err := repo.GetDocument(ctx)
	if err != nil {
		log.Printf("[Seed] Could not read document: %v", err)
		return
	}
	if len(doc.Positions) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating sample org chart...")

	ceo, err := repo.CreatePosition(ctx, models.Position{
		Title:      "Chief Executive Officer",
		Department: "Executive",
	})
	if err != nil {
		log.Printf("[Seed] Failed to create CEO position: %v", err)
		return
	}
	repo.CreateEmployee(ctx, ceo.ID, models.Employee{
		Name:      "Dana Whitfield",
		Email:     "dana.whitfield@example.com",
		StartDate: "2018-03-01",
		IsPrimary: true,
	})

	cto, err := repo.CreatePosition(ctx, models.Position{
		Title:            "Chief Technology Officer",
		Department:       "Technology",
		ParentPositionID: ceo.ID,
	})
	if err != nil {
		log.Printf("[Seed] Failed to create CTO position: %v", err)
		return
	}
	repo.CreateEmployee(ctx, cto.ID, models.Employee{
		Name:      "Luis Moreno",
		Email:     "luis.moreno@example.com",
		StartDate: "2019-06-15",
		IsPrimary: true,
	})

	engLead, err := repo.CreatePosition(ctx, models.Position{
		Title:            "Engineering Lead",
		Department:       "Technology",
		ParentPositionID: cto.ID,
	})
	if err != nil {
		log.Printf("[Seed] Failed to create engineering lead position: %v", err)
		return
	}
	repo.CreateEmployee(ctx, engLead.ID, models.Employee{
		Name:      "Priya Raman",
		Email:     "priya.raman@example.com",
		StartDate: "2021-01-11",
		IsPrimary: true,
	})
	repo.CreateEmployee(ctx, engLead.ID, models.Employee{
		Name:      "Tom Becker",
		Email:     "tom.becker@example.com",
		StartDate: "2022-09-05",
	})

	log.Println("[Seed] ✅ Sample org chart created")
}
