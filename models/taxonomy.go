package models

import "sort"

// Category labels the section of the college site a document belongs to.
// The same labels are used for query classification and retrieval filtering,
// so collectors, the classifier and the vector index all share this set.
type Category string

// CategoryNone means a query could not be classified with confidence.
// It is never assigned to a document.
const CategoryNone Category = "none"

const (
	CategoryFacultyCSE   Category = "faculty_cse"
	CategoryFacultyECE   Category = "faculty_ece"
	CategoryFacultyEEE   Category = "faculty_eee"
	CategoryFacultyCivil Category = "faculty_civil"
	CategoryFacultyMech  Category = "faculty_mech"
	CategoryFacultyIT    Category = "faculty_it"
	CategoryFacultyAIML  Category = "faculty_aiml"
	CategoryFacultyAIDS  Category = "faculty_aids"
	CategoryFacultyBSH   Category = "faculty_bsh"
	CategoryFacultyAdmin Category = "faculty_admin"
	CategoryFacultyHOD   Category = "faculty_hod"

	CategoryCollegeInfo    Category = "college_info"
	CategoryDepartmentInfo Category = "department_info"
	CategoryCollegeEvents  Category = "college_events"

	CategoryPlacementOverview Category = "placement_overview"
	CategoryPlacementRecord   Category = "placement_record"

	CategoryHostelInfo    Category = "hostel_info"
	CategoryPaymentsInfo  Category = "payments_info"
	CategoryResearch      Category = "research"
	CategoryAccreditation Category = "accreditation"
	CategoryRanking       Category = "ranking"

	CategoryExaminationResults     Category = "examination_results"
	CategoryExaminationTimetables  Category = "examination_timetables"
	CategoryCollegeNotifications   Category = "college_notifications"
	CategoryAcademicCalendar       Category = "academic_calendar"
	CategoryExaminationRegulations Category = "examination_regulations"
	CategoryOldQuestionPapers      Category = "old_question_papers"
	CategoryExaminationEvaluation  Category = "examination_evaluation"

	CategoryStudentActivitiesOverview Category = "student_activities_overview"
	CategoryStudentCouncil            Category = "student_council"
	CategoryProfessionalBodies        Category = "professional_bodies"
	CategoryStudentClubs              Category = "student_clubs"
	CategoryNSSExtension              Category = "nss_extension_activities"
	CategoryStudentPolicy             Category = "student_policy"
	CategoryStudentIncentives         Category = "student_incentives"
	CategoryTechMagazine              Category = "tech_magazine"

	CategoryGenericHTML Category = "generic_html"
)

// Departments are the department codes accepted by the faculty directory.
var Departments = []string{
	"cse", "ece", "eee", "civil", "mech", "it", "aiml", "aids", "bsh", "admin", "hod",
}

// FacultyCategory returns the faculty category for a department code.
func FacultyCategory(dept string) Category {
	return Category("faculty_" + dept)
}

// CategoryDescriptions maps each category to a sentence describing the
// queries it covers. The similarity classifier embeds these descriptions and
// matches queries against them, so every valid category needs one.
var CategoryDescriptions = map[Category]string{
	CategoryFacultyCSE:   "Questions about Computer Science and Engineering faculty, professors, their qualifications, or contact information.",
	CategoryFacultyECE:   "Questions about Electronics and Communication Engineering faculty, professors, their qualifications, or contact information.",
	CategoryFacultyEEE:   "Questions about Electrical and Electronics Engineering faculty, professors, their qualifications, or contact information.",
	CategoryFacultyCivil: "Questions about Civil Engineering faculty, professors, their qualifications, or contact information.",
	CategoryFacultyMech:  "Questions about Mechanical Engineering faculty, professors, their qualifications, or contact information.",
	CategoryFacultyIT:    "Questions about Information Technology faculty, professors, their qualifications, or contact information.",
	CategoryFacultyAIML:  "Questions about Artificial Intelligence and Machine Learning faculty, professors, their qualifications, or contact information.",
	CategoryFacultyAIDS:  "Questions about Artificial Intelligence and Data Science faculty, professors, their qualifications, or contact information.",
	CategoryFacultyBSH:   "Questions about Basic Sciences and Humanities faculty, professors, their qualifications, or contact information.",
	CategoryFacultyAdmin: "Questions about administrative staff or college administration personnel.",
	CategoryFacultyHOD:   "Questions about heads of departments and their contact information.",

	CategoryCollegeInfo:    "General questions about the college, its founding, location, or history.",
	CategoryDepartmentInfo: "Questions about specific departments, their programs, or syllabus.",
	CategoryCollegeEvents:  "Questions about upcoming or past college events and activities.",

	CategoryPlacementOverview: "Questions about college placements, companies, or the placement process.",
	CategoryPlacementRecord:   "Questions about placement records, statistics, or placement notices.",

	CategoryHostelInfo:    "Questions about hostel facilities, fees, or regulations.",
	CategoryPaymentsInfo:  "Questions about college fee payments, portals, or structures.",
	CategoryResearch:      "Questions about research and development activities or the research cell.",
	CategoryAccreditation: "Questions about college accreditations like NAAC or NBA.",
	CategoryRanking:       "Questions about the college's national or state rankings.",

	CategoryExaminationResults:     "Questions about examination results or result portals.",
	CategoryExaminationTimetables:  "Questions about exam timetables, schedules, or dates.",
	CategoryCollegeNotifications:   "Questions about general college notifications or circulars.",
	CategoryAcademicCalendar:       "Questions about the academic calendar or holidays.",
	CategoryExaminationRegulations: "Questions about exam regulations or rules.",
	CategoryOldQuestionPapers:      "Questions about old question papers or the exam papers portal.",
	CategoryExaminationEvaluation:  "Questions about exam evaluation or revaluation.",

	CategoryStudentActivitiesOverview: "Questions about student clubs, bodies, or extension activities in general.",
	CategoryStudentCouncil:            "Questions about the student council or student leadership.",
	CategoryProfessionalBodies:        "Questions about professional student bodies and organizations.",
	CategoryStudentClubs:              "Questions about student clubs, their activities, or membership.",
	CategoryNSSExtension:              "Questions about NSS and other extension activities.",
	CategoryStudentPolicy:             "Questions about student policies or rules, like the IT policy.",
	CategoryStudentIncentives:         "Questions about student incentives or awards.",
	CategoryTechMagazine:              "Questions about the college technical magazine and its issues.",

	CategoryGenericHTML: "General questions about pages on the college website not covered by another category.",
}

// Valid reports whether c is a known document category.
func (c Category) Valid() bool {
	_, ok := CategoryDescriptions[c]
	return ok
}

// CategoryLabels returns all valid category labels in sorted order.
func CategoryLabels() []string {
	labels := make([]string, 0, len(CategoryDescriptions))
	for c := range CategoryDescriptions {
		labels = append(labels, string(c))
	}
	sort.Strings(labels)
	return labels
}
