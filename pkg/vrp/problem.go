package vrp

// Location is a geographic point or a free-form address.
type Location struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// Window is a time window during which a job may be served.
type Window struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Job is a single delivery or service task.
type Job struct {
	Name     string    `json:"name"`
	Location *Location `json:"location,omitempty"`
	Duration int       `json:"duration,omitempty"` // service time, seconds
	Windows  []Window  `json:"windows,omitempty"`
	Load     []int     `json:"load,omitempty"`
}

// Break is a pause inside a shift.
type Break struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Shift is one working period of a resource, possibly with breaks.
type Shift struct {
	From   string  `json:"from,omitempty"`
	To     string  `json:"to,omitempty"`
	Breaks []Break `json:"breaks,omitempty"`
}

// Resource is a vehicle with capacity and work shifts.
type Resource struct {
	Name     string  `json:"name"`
	Capacity []int   `json:"capacity,omitempty"`
	Shifts   []Shift `json:"shifts,omitempty"`
}

// Problem is a complete routing request.
type Problem struct {
	Jobs      []Job                  `json:"jobs"`
	Resources []Resource             `json:"resources"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// ResourceByName returns the declared resource with the given name.
func (p *Problem) ResourceByName(name string) (Resource, bool) {
	if p == nil {
		return Resource{}, false
	}
	for _, r := range p.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// Clone returns a deep copy of the problem.
func (p *Problem) Clone() *Problem {
	if p == nil {
		return nil
	}
	cp := &Problem{
		Jobs:      make([]Job, len(p.Jobs)),
		Resources: make([]Resource, len(p.Resources)),
	}
	for i, j := range p.Jobs {
		cj := j
		if j.Location != nil {
			loc := *j.Location
			cj.Location = &loc
		}
		cj.Windows = append([]Window(nil), j.Windows...)
		cj.Load = append([]int(nil), j.Load...)
		cp.Jobs[i] = cj
	}
	for i, r := range p.Resources {
		cr := r
		cr.Capacity = append([]int(nil), r.Capacity...)
		cr.Shifts = make([]Shift, len(r.Shifts))
		for si, s := range r.Shifts {
			cs := s
			cs.Breaks = append([]Break(nil), s.Breaks...)
			cr.Shifts[si] = cs
		}
		cp.Resources[i] = cr
	}
	if p.Options != nil {
		cp.Options = make(map[string]interface{}, len(p.Options))
		for k, v := range p.Options {
			cp.Options[k] = v
		}
	}
	return cp
}
