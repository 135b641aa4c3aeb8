package models

// RbacFunc проверка доступа пользователя к маршруту
type RbacFunc func(actor Actor) bool

type Module string

const (
	PurchaseRequestModule Module = "PURCHASE_REQUEST"
	VendorModule          Module = "VENDOR"
	ExportModule          Module = "EXPORT"
)

type Permission string

const (
	CreatePermission   Permission = "CREATE"
	EditPermission     Permission = "EDIT"
	ViewPermission     Permission = "VIEW"
	ReviewPermission   Permission = "REVIEW"
	ManagePermission   Permission = "MANAGE"
	FilesPermission    Permission = "FILES"
	WithdrawPermission Permission = "WITHDRAW"
)
