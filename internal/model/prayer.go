package model

// AnonymousName replaces a blank submitter name.
const AnonymousName = "Anonymous"

// AnonymousTitle is the calendar title shown for anonymous submissions.
const AnonymousTitle = "Prayer"

// Submission is one stored prayer request. Date is an opaque string supplied
// by the submitter; it is only ever sorted and displayed.
type Submission struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Request string `json:"request"`
	Date    string `json:"date"`
}

// SubmitRequest is the form posted to /submit. Absent fields are empty.
type SubmitRequest struct {
	Name    string `form:"name"`
	Request string `form:"request"`
	Date    string `form:"date"`
}

// CalendarEvent is the projection consumed by the calendar widget.
type CalendarEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ToEvent projects a submission into a calendar event.
func (s Submission) ToEvent() CalendarEvent {
	title := s.Name
	if s.Name == AnonymousName {
		title = AnonymousTitle
	}
	return CalendarEvent{
		Title:       title,
		Date:        s.Date,
		Description: s.Request,
	}
}
