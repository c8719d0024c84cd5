package subscription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns a source holding deep copies of the given plans.
// Panics if no plans are provided.
func NewInMemSource(plans ...Plan) PlansListSource {
	if len(plans) < 1 {
		panic("subscription: at least one plan is required")
	}
	m := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		m[plan.ID] = plan.clone()
	}
	return &inMemSource{plans: m}
}

func (s *inMemSource) Load(context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Plan, len(s.plans))
	for id, plan := range s.plans {
		out[id] = plan.clone()
	}
	return out, nil
}

// catalogFile is the YAML layout of a plan catalog:
//
//	plans:
//	  - id: solo
//	    code: SOLO-M
//	    name: Corretor Solo
//	    monthly_price: 9990
//	    annual_price: 99900
//	    max_agents: 1
//	    family: INDIVIDUAL
//	    active: true
//	    features:
//	      whatsapp: true
//	      max_properties: 200
type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

type yamlSource struct {
	path string
	data []byte
}

// NewYAMLSource reads the catalog from a YAML file on every Load.
func NewYAMLSource(path string) PlansListSource {
	return &yamlSource{path: path}
}

// NewYAMLSourceFromBytes parses an in-memory YAML catalog, e.g. one
// embedded in the binary.
func NewYAMLSourceFromBytes(data []byte) PlansListSource {
	return &yamlSource{data: bytes.Clone(data)}
}

func (s *yamlSource) Load(context.Context) (map[string]Plan, error) {
	data := s.data
	if data == nil {
		var err error
		if data, err = os.ReadFile(s.path); err != nil {
			return nil, err
		}
	}

	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Join(ErrInvalidPlanConfiguration, err)
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, p := range file.Plans {
		if _, dup := plans[p.ID]; dup {
			return nil, errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("duplicate plan id %q", p.ID))
		}
		plans[p.ID] = p
	}
	return plans, nil
}
