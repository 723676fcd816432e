package rpcserver

import (
	"net/http"
	"strconv"

	"code.cryptopower.dev/group/govledger/ledger"
	"decred.org/dcrwallet/v2/errors"
	"github.com/gin-gonic/gin"
)

// Proposals handles the proposal routes.
type Proposals struct {
	ledger *ledger.Ledger
}

type proposalBody struct {
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type voteBody struct {
	Choice string `json:"choice" binding:"required,oneof=approve reject pass"`
}

// parseKey reads the :key path parameter, writing a 400 response when it is
// not an unsigned 64-bit integer.
func parseKey(c *gin.Context) (uint64, bool) {
	key, err := strconv.ParseUint(c.Param("key"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal key"})
		return 0, false
	}
	return key, true
}

// writeError maps a ledger error onto an HTTP status.
func writeError(c *gin.Context, err error) {
	code := ledger.Code(err)

	status := http.StatusInternalServerError
	switch code {
	case ledger.ErrNoSuchProposal:
		status = http.StatusNotFound
	case ledger.ErrAccessRejected:
		status = http.StatusForbidden
	case ledger.ErrAlreadyVoted, ledger.ErrProposalIsNotActive:
		status = http.StatusConflict
	case ledger.ErrInvalidChoice:
		status = http.StatusBadRequest
	case ledger.ErrUpdateFailed:
		if errors.Is(err, ledger.ErrRecordTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
	}
	if status == http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"err": err.Error(), "code": code})
}

func (p Proposals) Count(c *gin.Context) {
	n, err := p.ledger.ProposalCount()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (p Proposals) Get(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}
	prop, err := p.ledger.GetProposal(key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": prop})
}

func (p Proposals) Create(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}
	var req proposalBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	prev, err := p.ledger.CreateProposal(c.Request.Context(), key, ledger.CreateProposal{
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"previous": prev})
}

func (p Proposals) Edit(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}
	var req proposalBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	err := p.ledger.EditProposal(c.Request.Context(), key, ledger.CreateProposal{
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (p Proposals) End(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}
	if err := p.ledger.EndProposal(c.Request.Context(), key); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (p Proposals) Vote(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}
	var req voteBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	choice, err := ledger.ParseChoice(req.Choice)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := p.ledger.Vote(c.Request.Context(), key, choice); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
