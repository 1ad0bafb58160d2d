package models

// Report is the ordered claim→verdict mapping produced by one verification
// run. Entries are keyed by claim text and iterate in first-seen order.
// Duplicate claim text collapses to a single entry whose verdict is the one
// from the last occurrence. Entries are never removed once written.
type Report struct {
	order    []string
	verdicts map[string]Verdict
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{verdicts: make(map[string]Verdict)}
}

// Set records a verdict for a claim. A repeated claim keeps its original
// position but takes the new verdict (last write wins).
func (r *Report) Set(claim string, v Verdict) {
	if _, seen := r.verdicts[claim]; !seen {
		r.order = append(r.order, claim)
	}
	r.verdicts[claim] = v
}

// Get returns the verdict for a claim.
func (r *Report) Get(claim string) (Verdict, bool) {
	v, ok := r.verdicts[claim]
	return v, ok
}

// Len returns the number of distinct claims recorded.
func (r *Report) Len() int {
	return len(r.order)
}

// Claims returns the recorded claim texts in first-seen order.
func (r *Report) Claims() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entries returns claim/verdict pairs in first-seen order.
func (r *Report) Entries() []Entry {
	entries := make([]Entry, 0, len(r.order))
	for _, claim := range r.order {
		entries = append(entries, Entry{Claim: claim, Verdict: r.verdicts[claim]})
	}
	return entries
}

// Counts tallies entries per rating.
func (r *Report) Counts() (trueN, falseN, notYet, unclear int) {
	for _, v := range r.verdicts {
		switch v.Rating {
		case RatingTrue:
			trueN++
		case RatingFalse:
			falseN++
		case RatingNotYet:
			notYet++
		case RatingUnclear:
			unclear++
		}
	}
	return
}
