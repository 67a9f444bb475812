package model

// VolunteerApplication is the payload of a volunteer form submission.
// It is relayed to the admin mailbox, not persisted.
type VolunteerApplication struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Availability string `json:"availability,omitempty"`
	Skills       string `json:"skills,omitempty"`
	Message      string `json:"message,omitempty"`
}

// EnrollmentRequest is the payload of a programme enrollment form.
type EnrollmentRequest struct {
	StudentName  string `json:"studentName"`
	GuardianName string `json:"guardianName,omitempty"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Programme    string `json:"programme"`
	Notes        string `json:"notes,omitempty"`
}
