package service

import "github.com/noah-isme/entbridge-go-api/internal/models"

// CanViewSubmission decides who may see a submission's content and
// attachments: the owning student or any admin. It must be evaluated before
// any attachment bytes are streamed.
func CanViewSubmission(callerID uint, isAdmin bool, submission models.HomeworkSubmission) bool {
	return isAdmin || submission.UserID == callerID
}
