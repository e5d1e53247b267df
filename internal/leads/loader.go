package leads

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/google/uuid"

	"github.com/dominusativos/captazap/internal/phone"
)

// Contact mirrors one entry of the campaign contact file. The field names
// come from the labor-case export feeding the campaign: reclamante is the
// claimant's name, telefone may list several numbers separated by commas
// or semicolons.
type Contact struct {
	Name    string `json:"reclamante"`
	Phones  string `json:"telefone"`
	CaseRef string `json:"numero_processo"`
}

var phoneSep = regexp.MustCompile(`[,;]+`)

// LoadContacts reads the campaign contact file and turns each entry into a
// lead record with its candidate phones normalized. Entries without a
// single usable number are dropped with no error; the campaign must not
// stall on a bad row.
func LoadContacts(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leads: read contacts file: %w", err)
	}
	var contacts []Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("leads: parse contacts file: %w", err)
	}

	records := make([]*Record, 0, len(contacts))
	for _, c := range contacts {
		rec, err := c.Record()
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Record converts a contact entry into a lead record.
func (c Contact) Record() (*Record, error) {
	var phones []string
	for _, part := range phoneSep.Split(c.Phones, -1) {
		if canonical := phone.Normalize(part); canonical != "" {
			phones = append(phones, canonical)
		}
	}
	if len(phones) == 0 {
		return nil, ErrNoPhones
	}
	return &Record{
		ID:          uuid.New().String(),
		DisplayName: c.Name,
		CaseRef:     c.CaseRef,
		Phones:      phones,
	}, nil
}
