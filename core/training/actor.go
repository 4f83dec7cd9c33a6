package training

// Roles
const (
	RoleAdmin   = "admin"
	RoleTrainer = "trainer"
	RoleTrainee = "trainee"
)

var AllRoles = []string{RoleAdmin, RoleTrainer, RoleTrainee}

// Actor is the already-authenticated caller of a Service operation.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsTrainer() bool {
	return a.Role == RoleTrainer
}

func (a Actor) IsTrainee() bool {
	return a.Role == RoleTrainee
}

// CanManage reports whether the actor may administer the class:
// admins always can, trainers only their own classes.
func (a Actor) CanManage(tc TrainingClass) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsTrainer() && a.ID != "" && a.ID == tc.Trainer
}

// CanEnroll reports whether the actor may enroll (or withdraw) the trainee in the class.
func (a Actor) CanEnroll(tc TrainingClass, traineeID string) bool {
	if a.CanManage(tc) {
		return true
	}
	return a.IsTrainee() && a.ID != "" && a.ID == traineeID
}
