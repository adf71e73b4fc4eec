package router

import (
	"github.com/corebank/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// SupervisorRole may approve or reject ceiling requests and administer
// days, tills and schemes
const SupervisorRole = "supervisor"

// Handlers is the set of custody handlers mounted under the API group
type Handlers struct {
	Days    *handler.DayHandler
	Tellers *handler.TellerHandler
	Ceiling *handler.CeilingHandler
	Cash    *handler.CashHandler
	Posting *handler.PostingHandler
}

// CustodyGroups builds the route groups of the custody API. supervisor
// guards the administrative routes.
func CustodyGroups(h Handlers, supervisor gin.HandlerFunc) []*DomainGroup {
	days := NewDomainGroup("days", "/days")
	days.GET("", h.Days.List)
	days.GET("/current", h.Days.Current)
	days.POST("/open", supervisor, h.Days.Open)
	days.POST("/close", supervisor, h.Days.Close)
	days.POST("/reopen", supervisor, h.Days.Reopen)
	days.DELETE("/:id", supervisor, h.Days.Delete)

	tellers := NewDomainGroup("tellers", "/tellers")
	tellers.GET("", h.Tellers.List)
	tellers.POST("", supervisor, h.Tellers.Create)
	assignments := tellers.Group("assignments", "/assignments")
	assignments.POST("", supervisor, h.Tellers.Assign)
	assignments.GET("/me", h.Tellers.Mine)
	assignments.GET("/primary", h.Tellers.Primary)
	assignments.DELETE("/:id", supervisor, h.Tellers.Unassign)

	ceiling := NewDomainGroup("ceiling", "/ceiling-requests")
	ceiling.GET("", h.Ceiling.List)
	ceiling.POST("", h.Ceiling.Create)
	ceiling.GET("/:id", h.Ceiling.Get)
	ceiling.POST("/:id/approve", supervisor, h.Ceiling.Approve)
	ceiling.POST("/:id/reject", supervisor, h.Ceiling.Reject)

	cash := NewDomainGroup("cash", "/cash")
	cash.POST("/withdrawals", h.Cash.Withdraw)
	cash.POST("/deposits", h.Cash.Deposit)
	cash.POST("/transfers", h.Cash.Transfer)
	cash.GET("/transactions/:reference", h.Cash.GetTransaction)
	cash.GET("/denominations/suggest", h.Cash.SuggestDenominations)
	cash.POST("/vaults", supervisor, h.Cash.OpenVault)
	cash.GET("/custodians/:id/position", h.Cash.Position)
	cash.POST("/custodians/:id/fund", supervisor, h.Cash.Fund)

	posting := NewDomainGroup("posting", "/posting")
	posting.GET("/schemes", h.Posting.ListSchemes)
	posting.POST("/schemes", supervisor, h.Posting.CreateScheme)
	posting.GET("/schemes/:code", h.Posting.GetScheme)
	posting.GET("/schemes/:code/split", h.Posting.PreviewSplit)
	posting.PUT("/schemes/:code/shares", supervisor, h.Posting.UpdateShares)
	posting.GET("/batches/:reference", h.Posting.InspectBatch)

	return []*DomainGroup{days, tellers, ceiling, cash, posting}
}
