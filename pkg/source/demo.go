package source

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pluqqy/itemgrid/pkg/models"
)

// demoNamespace makes demo keys stable, so seeding twice replaces the
// same records instead of duplicating them.
var demoNamespace = uuid.MustParse("6f1c9a52-3b8e-4d7f-9a21-5c0e8b7d4f10")

var (
	demoCreators = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Edsger Dijkstra", "Barbara Liskov", "Donald Knuth", "Frances Allen"}
	demoTypes    = []string{"book", "journalArticle", "conferencePaper", "thesis", "report"}
	demoSubjects = []string{"Compilers", "Concurrency", "Type Systems", "Storage", "Networks", "Algorithms", "Verification", "Databases"}
	demoTags     = []string{"red", "green", "blue", "to-read", "cited", "draft"}
)

// DemoKey returns the key of the i-th demo record.
func DemoKey(i int) string {
	return uuid.NewSHA1(demoNamespace, []byte(fmt.Sprintf("item-%d", i))).String()
}

// DemoRecords generates n deterministic records for demos and seeding.
func DemoRecords(n int) []models.Record {
	base := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	records := make([]models.Record, n)
	for i := range records {
		var tags []string
		if i%5 == 0 {
			tags = append(tags, demoTags[i%3])
		}
		if i%11 == 0 {
			tags = append(tags, demoTags[3+i%3])
		}
		records[i] = models.Record{
			Key:          DemoKey(i),
			Title:        fmt.Sprintf("%s, part %d", demoSubjects[i%len(demoSubjects)], i+1),
			Creator:      demoCreators[i%len(demoCreators)],
			Year:         1960 + (i*7)%64,
			ItemType:     demoTypes[i%len(demoTypes)],
			DateModified: base.Add(time.Duration(i) * time.Hour),
			Tags:         tags,
		}
	}
	return records
}
