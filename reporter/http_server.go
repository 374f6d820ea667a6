// This is a http type of reporter.
// It fetches data from the escrow bookkeeping db plus live account reads
// and publishes it on http routes. No route mutates anything.
package reporter

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/hashlock-io/escrow-go/agreement"
	"github.com/hashlock-io/escrow-go/common"
	"github.com/hashlock-io/escrow-go/escrowdb"
	"github.com/hashlock-io/escrow-go/escrowman"
)

const (
	ROUTE_HELLO   = "/hello"
	ROUTE_ESCROW  = "/escrow"
	ROUTE_ATTEMPT = "/attempt"
)

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream data sources
	db     *escrowdb.EscrowDB
	client *escrowman.Escrowman
}

func NewHttpReporter(serverIP, serverPort string, db *escrowdb.EscrowDB, client *escrowman.Escrowman) *HttpReporter {
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		db:         db,
		client:     client,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_ESCROW, h.Escrow)
	router.GET(ROUTE_ATTEMPT, h.Attempt)

	return router
}

// Hook up router & ip:port
func (h *HttpReporter) Run() {
	router := h.SetupRouter()
	address := h.serverIP + ":" + h.serverPort
	if err := router.Run(address); err != nil {
		panic(err)
	}
}

// Liveness route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

// Escrow reports one escrow by hex seed: the local bookkeeping row plus the
// live decoded account state.
func (h *HttpReporter) Escrow(c *gin.Context) {
	seedHex := c.Query("seed")
	if seedHex == "" || !common.IsHexString(seedHex) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be a hex string"})
		return
	}

	resp := gin.H{"seed": seedHex}

	rec, found, err := h.db.GetEscrow(seedHex)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if found {
		resp["record"] = rec
	}

	acc, err := h.client.GetEscrowAccount(context.Background(), common.HexStrToByteSlice(seedHex))
	switch {
	case errors.Is(err, agreement.ErrAccountNotFound):
		resp["onchain"] = nil
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	default:
		onchain := gin.H{
			"amount":      acc.Amount,
			"commitment":  acc.Commitment,
			"isClaimed":   acc.IsClaimed,
			"initializer": acc.Initializer.String(),
		}
		if acc.Receiver != nil {
			onchain["receiver"] = acc.Receiver.String()
		}
		resp["onchain"] = onchain
	}

	if !found && resp["onchain"] == nil {
		c.JSON(http.StatusNotFound, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Attempt reports one claim attempt by execution id.
func (h *HttpReporter) Attempt(c *gin.Context) {
	executionID := c.Query("execution_id")
	if executionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution_id required"})
		return
	}

	rec, found, err := h.db.GetAttempt(executionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "attempt not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
