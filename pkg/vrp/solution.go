package vrp

// Visit is one job's appearance within a trip.
type Visit struct {
	Job                 string   `json:"job,omitempty"`
	Arrival             string   `json:"arrival,omitempty"`
	ViolatedConstraints []string `json:"violatedConstraints,omitempty"`
}

// Trip is one resource's planned sequence of visits.
type Trip struct {
	Resource string  `json:"resource,omitempty"`
	Visits   []Visit `json:"visits,omitempty"`
	Distance int     `json:"distance,omitempty"` // meters
	Duration int     `json:"duration,omitempty"` // seconds
	Load     []int   `json:"load,omitempty"`
}

// Violation is a solver-reported constraint breach.
type Violation struct {
	Name  string `json:"name,omitempty"`
	Level string `json:"level,omitempty"`
	Value string `json:"value,omitempty"`
}

// Score summarizes solution quality.
type Score struct {
	Feasible  bool `json:"feasible"`
	HardScore int  `json:"hardScore,omitempty"`
	SoftScore int  `json:"softScore,omitempty"`
}

// Solution is a complete routing response from the solver.
type Solution struct {
	ID              string            `json:"id,omitempty"`
	Status          string            `json:"status,omitempty"`
	Trips           []Trip            `json:"trips,omitempty"`
	Unserved        []string          `json:"unserved,omitempty"`
	UnservedReasons map[string]string `json:"unservedReasons,omitempty"`
	Violations      []Violation       `json:"violations,omitempty"`
	Occupancy       float64           `json:"occupancy,omitempty"`
	TotalDistance   int               `json:"totalTravelDistanceInMeters,omitempty"`
	TotalTravelTime int               `json:"totalTravelTimeInSeconds,omitempty"`
	Score           *Score            `json:"score,omitempty"`
}

// Clone returns a deep copy of the solution.
func (s *Solution) Clone() *Solution {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Trips = make([]Trip, len(s.Trips))
	for i, t := range s.Trips {
		ct := t
		ct.Load = append([]int(nil), t.Load...)
		ct.Visits = make([]Visit, len(t.Visits))
		for vi, v := range t.Visits {
			cv := v
			cv.ViolatedConstraints = append([]string(nil), v.ViolatedConstraints...)
			ct.Visits[vi] = cv
		}
		cp.Trips[i] = ct
	}
	cp.Unserved = append([]string(nil), s.Unserved...)
	if s.UnservedReasons != nil {
		cp.UnservedReasons = make(map[string]string, len(s.UnservedReasons))
		for k, v := range s.UnservedReasons {
			cp.UnservedReasons[k] = v
		}
	}
	cp.Violations = append([]Violation(nil), s.Violations...)
	if s.Score != nil {
		sc := *s.Score
		cp.Score = &sc
	}
	return &cp
}
