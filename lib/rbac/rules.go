package rbac

import (
	"procurement-backend/models"
)

var (
	ApproverRoleSet = []models.UserRole{models.ApproverRole, models.AdminRole}
	AllRoles        = []models.UserRole{models.EmployeeRole, models.ApproverRole, models.AdminRole}
)

func initRules() []Rule {
	rules := purchaseRequestRules()
	rules = append(rules, vendorRules()...)
	return append(rules, exportRules()...)
}

// автор заявки и её статус проверяются внутри операций, здесь роли только для подсказок фронту
func purchaseRequestRules() []Rule {
	inOperation := AllowFunc()
	return []Rule{
		// VIEW
		{models.PurchaseRequestModule, models.ViewPermission, AllRoles, "POST /api/v1/purchase_request/list", nil},
		{models.PurchaseRequestModule, models.ViewPermission, AllRoles, "GET /api/v1/purchase_request/:id", nil},
		{models.PurchaseRequestModule, models.ViewPermission, AllRoles, "GET /api/v1/purchase_request/:id/history", nil},
		// CREATE
		{models.PurchaseRequestModule, models.CreatePermission, AllRoles, "POST /api/v1/purchase_request", nil},
		{models.PurchaseRequestModule, models.CreatePermission, AllRoles, "POST /api/v1/purchase_request/draft/validate", nil},
		// EDIT
		{models.PurchaseRequestModule, models.EditPermission, AllRoles, "PUT /api/v1/purchase_request/:id", inOperation},
		{models.PurchaseRequestModule, models.EditPermission, AllRoles, "GET /api/v1/purchase_request/:id/draft", inOperation},
		{models.PurchaseRequestModule, models.EditPermission, AllRoles, "PUT /api/v1/purchase_request/:id/reply", inOperation},
		{models.PurchaseRequestModule, models.WithdrawPermission, AllRoles, "PUT /api/v1/purchase_request/:id/withdraw", inOperation},
		// REVIEW
		{models.PurchaseRequestModule, models.ReviewPermission, ApproverRoleSet, "PUT /api/v1/purchase_request/:id/approve", inOperation},
		{models.PurchaseRequestModule, models.ReviewPermission, ApproverRoleSet, "PUT /api/v1/purchase_request/:id/reject", inOperation},
		{models.PurchaseRequestModule, models.ReviewPermission, ApproverRoleSet, "PUT /api/v1/purchase_request/:id/clarification", inOperation},
		// FILES
		{models.PurchaseRequestModule, models.FilesPermission, AllRoles, "POST /api/v1/purchase_request/:id/attachments", inOperation},
		{models.PurchaseRequestModule, models.FilesPermission, AllRoles, "GET /api/v1/purchase_request/:id/attachments/:attachmentId", inOperation},
	}
}

func vendorRules() []Rule {
	return []Rule{
		{models.VendorModule, models.ViewPermission, AllRoles, "POST /api/v1/vendor/list", nil},
		{models.VendorModule, models.ViewPermission, AllRoles, "GET /api/v1/vendor/:id", nil},
		{models.VendorModule, models.ManagePermission, ApproverRoleSet, "POST /api/v1/vendor", nil},
	}
}

func exportRules() []Rule {
	return []Rule{
		{models.ExportModule, models.ViewPermission, AllRoles, "POST /api/v1/purchase_request/export", nil},
		{models.ExportModule, models.ViewPermission, AllRoles, "GET /api/v1/purchase_request/:id/pdf", AllowFunc()},
	}
}
