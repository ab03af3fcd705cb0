package export

import (
	"bytes"
	"encoding/json"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

type sdrTrunkConventional struct {
	Name        string  `json:"name"`
	Frequency   float64 `json:"frequency"`
	Description string  `json:"description"`
	Mode        string  `json:"mode"`
	County      string  `json:"county"`
	State       string  `json:"state"`
	ServiceType string  `json:"serviceType"`
}

type sdrTrunkSystem struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	SystemClass   string `json:"systemClass"`
	Description   string `json:"description"`
	BusinessType  string `json:"businessType"`
	BusinessOwner string `json:"businessOwner"`
}

type sdrTrunkDocument struct {
	Conventional []sdrTrunkConventional `json:"conventional"`
	Trunked      []sdrTrunkSystem       `json:"trunked"`
}

// SDRTrunk renders the SDRTrunk playlist document from the conventional
// view and the business trunked systems view. Sites and talkgroups are not
// included.
func SDRTrunk(conv []types.Frequency, trunked []types.TrunkedSystem) ([]byte, error) {
	doc := sdrTrunkDocument{
		Conventional: make([]sdrTrunkConventional, len(conv)),
		Trunked:      make([]sdrTrunkSystem, len(trunked)),
	}
	for i := range conv {
		f := &conv[i]
		doc.Conventional[i] = sdrTrunkConventional{
			Name:        f.Name,
			Frequency:   f.Frequency,
			Description: str(f.Description),
			Mode:        f.Mode,
			County:      str(f.County),
			State:       str(f.State),
			ServiceType: str(f.ServiceType),
		}
	}
	for i := range trunked {
		s := &trunked[i]
		doc.Trunked[i] = sdrTrunkSystem{
			Name:          s.Name,
			Type:          types.ClassBusiness,
			SystemClass:   types.ClassBusiness,
			Description:   str(s.Description),
			BusinessType:  str(s.BusinessType),
			BusinessOwner: str(s.BusinessOwner),
		}
	}
	return marshalIndent(doc)
}

// marshalIndent encodes v with a two-space indent, without HTML escaping
// and without a trailing newline.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
