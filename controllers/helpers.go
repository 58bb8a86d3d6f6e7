package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func ParamID(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" é obrigatório", http.StatusBadRequest)
		return "", false
	}
	return v, true
}

// ParseDate aceita o formato da UI (yyyy-mm-dd) e RFC3339.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// QueryDate lê uma data opcional da querystring; responde 400 se vier malformada.
func QueryDate(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	t, err := ParseDate(v)
	if err != nil {
		RespondError(c, name+" inválido (use yyyy-mm-dd)", http.StatusBadRequest)
		return nil, false
	}
	return &t, true
}

// QueryWindow lê o par startDate/endDate e fecha o fim da janela no último
// instante do dia, para que consultas por dia incluam o dia inteiro.
func QueryWindow(c *gin.Context) (start, end *time.Time, ok bool) {
	start, ok = QueryDate(c, "startDate")
	if !ok {
		return nil, nil, false
	}
	end, ok = QueryDate(c, "endDate")
	if !ok {
		return nil, nil, false
	}
	if end != nil {
		e := end.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}
	return start, end, true
}

// Pagination lê page/pageSize com defaults sãos (página 1, 50 itens, teto 200).
func Pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}
