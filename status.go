package main

import (
	"github.com/valyala/fasthttp"
)

// initStatus exposes the live counters as JSON on /status, for monitoring
// and the occasional curious operator.
func initStatus(addr string) {
	go (func() {
		P("status endpoint listening on", addr)
		if err := fasthttp.ListenAndServe(addr, statusHandler); err != nil {
			B("status endpoint failed: ", err)
		}
	})()
}

func statusHandler(ctx *fasthttp.RequestCtx) {
	if string(ctx.Path()) != "/status" {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	s := getStats()
	data, err := Marshal(&s)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.Write(data)
}
