// Command generate_sample writes a synthetic resource spread CSV for demos
// and load testing: the fixed attribute columns followed by a run of weekly
// date columns, with sparse blanks so imports exercise the skip path.
// Usage: go run cmd/generate_sample/main.go [-out file.csv] [-rows N] [-weeks N]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"
)

var staticHeaders = []string{
	"ProjectId", "ActivityId", "ActivityName", "WBS", "WBS Name",
	"Curve", "Calendar", "ResourceId", "Resource Id Name", "Resource Type",
	"Budgeted Units", "Actual Units", "Remaining Units", "Remaining Late Finish",
}

var activityNames = []string{
	"Excavation", "Concrete", "Steel Work", "Welding", "Painting",
	"Scaffolding", "Electrical", "Instrumentation", "Testing", "Commissioning",
}

var resourceRoles = [][2]string{
	{"RES001", "Operator"}, {"RES002", "Mason"}, {"RES003", "Fitter"},
	{"RES004", "Welder"}, {"RES005", "Painter"}, {"RES006", "Helper"},
	{"RES007", "Electrician"}, {"RES008", "Technician"}, {"RES009", "Inspector"},
	{"RES010", "Supervisor"},
}

func main() {
	out := flag.String("out", "./resource_spread_sample.csv", "output CSV path")
	rows := flag.Int("rows", 10000, "number of data rows")
	weeks := flag.Int("weeks", 50, "number of weekly columns")
	blankRate := flag.Float64("blank-rate", 0.1, "fraction of weekly cells left blank")
	flag.Parse()

	file, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	weekHeaders := makeWeekHeaders(*weeks)
	if err := writer.Write(append(append([]string{}, staticHeaders...), weekHeaders...)); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	for i := 1; i <= *rows; i++ {
		activity := activityNames[rand.Intn(len(activityNames))]
		role := resourceRoles[rand.Intn(len(resourceRoles))]

		budgeted := 500 + rand.Intn(4501)
		actual := rand.Intn(budgeted + 1)
		remaining := budgeted - actual

		record := []string{
			fmt.Sprintf("PRJ%03d", 1+rand.Intn(200)),
			fmt.Sprintf("ACT%05d", i),
			activity,
			fmt.Sprintf("WBS-%03d", 1+rand.Intn(500)),
			activity + " Section",
			"S-Curve",
			"BaseCal",
			role[0],
			role[1],
			"Labor",
			strconv.Itoa(budgeted),
			strconv.Itoa(actual),
			strconv.Itoa(remaining),
			strconv.Itoa(5 + rand.Intn(46)),
		}

		for range weekHeaders {
			if rand.Float64() < *blankRate {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(0.1+rand.Float64()*19.9, 'f', 1, 64))
		}

		if err := writer.Write(record); err != nil {
			log.Fatalf("Failed to write row %d: %v", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatalf("Failed to flush CSV: %v", err)
	}

	log.Printf("Generated %d rows with %d weekly columns in %s", *rows, *weeks, *out)
}

// makeWeekHeaders produces consecutive week-start labels like "5-Jul-25",
// the format field exports use.
func makeWeekHeaders(n int) []string {
	headers := make([]string, 0, n)
	start := time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, 7*i)
		headers = append(headers, fmt.Sprintf("%d-%s-%02d", d.Day(), d.Format("Jan"), d.Year()%100))
	}
	return headers
}
