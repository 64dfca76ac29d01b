package ws

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/ws_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("ws_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("ws_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return schema
}

func validate(t *testing.T, schema *jsonschema.Schema, raw []byte) error {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return schema.Validate(v)
}

func TestWSProtocolSchema(t *testing.T) {
	schema := compileSchema(t)

	samples := []string{
		`{"type":"crash:join"}`,
		`{"type":"crash:place_bet","request_id":"req_1","amount":100}`,
		`{"type":"crash:cashout","request_id":"req_2"}`,
		`{"type":"color:place_bet","amount":"50.25","color":"violet"}`,
		`{"type":"ack","request_id":"req_1","bet_id":"01J","balance":"9900"}`,
		`{"type":"ack","balance":"10052","payout":"152","multiplier":"1.52"}`,
		`{"type":"error","request_id":"req_3","error":"betting_closed"}`,
		`{"type":"crash:waiting","data":{"round_id":"r1","round_number":7,"countdown":10,"hash":"ab"}}`,
		`{"type":"crash:tick","data":{"multiplier":"1.35"}}`,
		`{"type":"crash:end","data":{"round_id":"r1","crash_point":"2.90","server_seed":"s"}}`,
		`{"type":"color:tick","data":{"seconds_left":9,"status":"locked"}}`,
		`{"type":"color:result","data":{"round_id":"r2","color":"green","winners":3,"server_seed":"s"}}`,
		`{"type":"wallet:balance_update","data":{"balance":"10350"}}`,
	}
	for i, s := range samples {
		if err := validate(t, schema, []byte(s)); err != nil {
			t.Fatalf("schema validate sample %d: %v", i, err)
		}
	}

	invalid := []string{
		`{"type":"crash:place_bet"}`,
		`{"type":"color:place_bet","amount":10,"color":"blue"}`,
		`{"type":"crash:join","request_id":"` + strings.Repeat("a", 65) + `"}`,
		`{"type":"crash:tick","data":{}}`,
		`{"type":"error","error":"Bad Thing"}`,
		`{"type":"spectate"}`,
	}
	for i, s := range invalid {
		if err := validate(t, schema, []byte(s)); err == nil {
			t.Fatalf("invalid sample %d accepted: %s", i, s)
		}
	}
}

func TestEncodedMessagesMatchSchema(t *testing.T) {
	schema := compileSchema(t)
	payout := decimal.NewFromInt(152)
	mult := decimal.RequireFromString("1.52")

	ack, _ := json.Marshal(Ack{Type: TypeAck, RequestID: "r", BetID: "b", Balance: decimal.NewFromInt(10052), Payout: &payout, Multiplier: &mult})
	errReply, _ := json.Marshal(ErrorReply{Type: TypeError, Error: "already_bet"})
	tick, _ := encodeEvent("crash:tick", map[string]any{"multiplier": decimal.New(135, -2)})
	balance, _ := encodeEvent("wallet:balance_update", map[string]any{"balance": decimal.NewFromInt(9900)})

	for i, raw := range [][]byte{ack, errReply, tick, balance} {
		if err := validate(t, schema, raw); err != nil {
			t.Fatalf("encoded message %d (%s): %v", i, raw, err)
		}
	}
}
