package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"Sonic-Agent/sdk/go/sonicagent"
)

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/agent/action", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req sonicagent.ActionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Action {
		case "transfer":
			_ = json.NewEncoder(w).Encode(sonicagent.ActionResponse{
				Action: "transfer",
				TransactionData: &sonicagent.TransactionData{
					From:              "0x1111111111111111111111111111111111111111",
					To:                "0x2222222222222222222222222222222222222222",
					Amount:            json.Number("1.5"),
					TokenName:         "S",
					TokenAddress:      "0x0000000000000000000000000000000000000000",
					Decimals:          18,
					RequiresSignature: true,
				},
				Message: "Please confirm transfer of 1.5 S from 0x1111111111111111111111111111111111111111 to 0x2222222222222222222222222222222222222222",
			})
		default:
			_ = json.NewEncoder(w).Encode(sonicagent.ActionResponse{
				Status: "success",
				Result: "Balance: 12.5 S",
			})
		}
	})
	mux.HandleFunc("/agent/history", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]sonicagent.HistoryRecord{
			{
				RequestID:  "demo-request",
				Connection: "sonic",
				Action:     "get-balance",
				Status:     "success",
				Reply:      "Balance: 12.5 S",
				CreatedAt:  time.Now().Unix(),
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := sonicagent.NewClient(srv.URL, srv.Client())
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	balance, err := client.ExecuteAction(ctx, sonicagent.ActionRequest{
		Connection: "sonic",
		Action:     "get-balance",
		Params:     []string{"0x1111111111111111111111111111111111111111"},
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("balance result: %s\n", balance.Result)

	transfer, err := client.ExecuteAction(ctx, sonicagent.ActionRequest{
		Connection: "sonic",
		Action:     "transfer",
		Params: []string{
			"0x1111111111111111111111111111111111111111",
			"0x2222222222222222222222222222222222222222",
			"1.5",
		},
	})
	if err != nil {
		panic(err)
	}
	if transfer.IsPending() {
		fmt.Printf("unsigned transaction for %s %s, sign client-side\n",
			transfer.TransactionData.Amount, transfer.TransactionData.TokenName)
	}

	records, err := client.History(ctx, 5)
	if err != nil {
		panic(err)
	}
	fmt.Printf("history entries: %d\n", len(records))
}
