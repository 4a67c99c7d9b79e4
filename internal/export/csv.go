package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/spec-kit/employee-service/internal/domain"
)

var csvHeader = []string{"ID", "Name", "Email", "Salary", "Department", "Created At", "Updated At"}

func writeCSV(path string, employees []domain.Employee) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range employees {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			e.Email,
			formatSalary(e.Salary),
			departmentName(e),
			formatDate(e.CreatedAt),
			formatDate(e.UpdatedAt),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
