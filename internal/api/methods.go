package api

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bizdesk.v1.Bizdesk"

// Unqualified method names.
const (
	Register         = "Register"
	Login            = "Login"
	FederatedLogin   = "FederatedLogin"
	RequestResetCode = "RequestResetCode"
	RedeemResetCode  = "RedeemResetCode"
	Me               = "Me"
	UpdateProfile    = "UpdateProfile"
	ListAccounts     = "ListAccounts"
	Compose          = "Compose"
	Ping             = "Ping"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}
