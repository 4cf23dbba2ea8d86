package domain

// Notification template keys.
const (
	TemplateCandidatureAcceptee = "candidature_acceptee"
	TemplateCandidatureRefusee  = "candidature_refusee"
	TemplateVisitePlanifiee     = "visite_planifiee"
	TemplateContratSignature    = "contrat_signature"
)

// Notification asks for one templated email to be sent.
type Notification struct {
	Template  string
	To        []string
	Vars      map[string]string
	BCCAdmins bool
}

// ContractDocument gathers what the renderer needs to print a lease.
type ContractDocument struct {
	Contract    Contract
	Logement    Logement
	Candidature Candidature
}

// InspectionDocument gathers what the renderer needs to print an état des lieux.
type InspectionDocument struct {
	Contract    Contract
	Logement    Logement
	Candidature Candidature
	Inspection  Inspection
	Photos      []Photo
}
