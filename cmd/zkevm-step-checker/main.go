package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fixture"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
	zkevmspecs "github.com/taikochain/zkevm-specs/pkg/zkevm-specs"
)

// TraceInput is the JSON document the checker consumes: the committed
// tables plus the step trace to verify against them.
type TraceInput struct {
	Block        *BlockInput `json:"block,omitempty"`
	Transactions []TxInput   `json:"transactions,omitempty"`
	Bytecodes    []string    `json:"bytecodes,omitempty"` // Hex code strings
	Rws          []RwInput   `json:"rws"`
	Steps        []StepInput `json:"steps"`
}

type BlockInput struct {
	Coinbase  uint64 `json:"coinbase"`
	Treasury  uint64 `json:"treasury"`
	GasLimit  uint64 `json:"gas_limit"`
	Number    uint64 `json:"number"`
	Timestamp uint64 `json:"timestamp"`
	BaseFee   string `json:"base_fee"` // Hex or decimal word
	ChainId   uint64 `json:"chain_id"`
}

type TxInput struct {
	ID            uint64 `json:"id"`
	Nonce         uint64 `json:"nonce"`
	Gas           uint64 `json:"gas"`
	GasTipCap     string `json:"gas_tip_cap"`
	GasFeeCap     string `json:"gas_fee_cap"`
	CallerAddress uint64 `json:"caller_address"`
	CalleeAddress uint64 `json:"callee_address"`
	Value         string `json:"value,omitempty"`
	CallData      string `json:"call_data,omitempty"` // Hex string
	IsCreate      bool   `json:"is_create,omitempty"`
	InvalidTx     bool   `json:"invalid_tx,omitempty"`
}

// RwInput is one RW-table row. Value-kind cells are written as
// {"value": "..."}, word-kind cells as {"word": "..."}.
type RwInput struct {
	RwCounter  uint64     `json:"rw_counter"`
	Rw         string     `json:"rw"` // "Read" or "Write"
	Tag        string     `json:"tag"`
	ID         uint64     `json:"id,omitempty"`
	Address    uint64     `json:"address,omitempty"`
	FieldTag   uint64     `json:"field_tag,omitempty"`
	StorageKey string     `json:"storage_key,omitempty"`
	Value      *CellInput `json:"value,omitempty"`
	ValuePrev  *CellInput `json:"value_prev,omitempty"`
	Aux0       string     `json:"aux0,omitempty"`
}

type CellInput struct {
	Value string `json:"value,omitempty"`
	Word  string `json:"word,omitempty"`
}

type StepInput struct {
	ExecutionState         string `json:"execution_state"`
	RwCounter              uint64 `json:"rw_counter"`
	CallID                 uint64 `json:"call_id"`
	IsRoot                 bool   `json:"is_root"`
	IsCreate               bool   `json:"is_create"`
	CodeHash               string `json:"code_hash,omitempty"`
	ProgramCounter         uint64 `json:"program_counter"`
	StackPointer           uint64 `json:"stack_pointer"`
	GasLeft                uint64 `json:"gas_left"`
	MemoryWordSize         uint64 `json:"memory_word_size,omitempty"`
	ReversibleWriteCounter uint64 `json:"reversible_write_counter,omitempty"`
	LogID                  uint64 `json:"log_id,omitempty"`
}

func main() {
	input, err := readInput(os.Args[1:])
	if err != nil {
		fatal(fmt.Sprintf("Failed to read trace: %v", err))
	}

	var trace TraceInput
	if err := json.Unmarshal(input, &trace); err != nil {
		fatal(fmt.Sprintf("Failed to parse trace: %v", err))
	}

	tables, err := convertTables(trace)
	if err != nil {
		fatal(fmt.Sprintf("Failed to convert tables: %v", err))
	}

	steps, err := convertSteps(trace.Steps)
	if err != nil {
		fatal(fmt.Sprintf("Failed to convert steps: %v", err))
	}

	logStderr(fmt.Sprintf("Verifying %d steps against %d RW rows...", len(steps), len(tables.RWTable)))
	if err := zkevmspecs.VerifySteps(tables, steps); err != nil {
		logStderr("ERROR: " + err.Error())
		fmt.Println("INVALID")
		os.Exit(1)
	}
	fmt.Println("OK")
}

func readInput(args []string) ([]byte, error) {
	if len(args) > 0 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func convertTables(trace TraceInput) (*evm.Tables, error) {
	tables := &evm.Tables{}

	block := fixture.NewBlock()
	if b := trace.Block; b != nil {
		baseFee, err := parseWord(b.BaseFee)
		if err != nil {
			return nil, fmt.Errorf("block base_fee: %w", err)
		}
		block = &fixture.Block{
			Coinbase:  b.Coinbase,
			Treasury:  b.Treasury,
			GasLimit:  b.GasLimit,
			Number:    b.Number,
			Timestamp: b.Timestamp,
			BaseFee:   baseFee,
			ChainId:   b.ChainId,
		}
	}
	tables.BlockTable = block.TableAssignments()

	for _, t := range trace.Transactions {
		tx, err := convertTx(t)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", t.ID, err)
		}
		tables.TxTable = append(tables.TxTable, tx.TableAssignments()...)
	}

	for i, codeHex := range trace.Bytecodes {
		code, err := parseHexBytes(codeHex)
		if err != nil {
			return nil, fmt.Errorf("bytecode %d: %w", i, err)
		}
		tables.BytecodeTable = append(tables.BytecodeTable, fixture.NewBytecodeFromRaw(code).TableAssignments()...)
	}

	for i, r := range trace.Rws {
		row, err := convertRwRow(r)
		if err != nil {
			return nil, fmt.Errorf("rw row %d: %w", i, err)
		}
		tables.RWTable = append(tables.RWTable, row)
	}

	return tables, nil
}

func convertTx(t TxInput) (*fixture.Transaction, error) {
	tx := fixture.NewTransaction(t.ID)
	tx.Nonce = t.Nonce
	if t.Gas != 0 {
		tx.Gas = t.Gas
	}
	if t.GasTipCap != "" {
		w, err := parseWord(t.GasTipCap)
		if err != nil {
			return nil, fmt.Errorf("gas_tip_cap: %w", err)
		}
		tx.GasTipCap = w
	}
	if t.GasFeeCap != "" {
		w, err := parseWord(t.GasFeeCap)
		if err != nil {
			return nil, fmt.Errorf("gas_fee_cap: %w", err)
		}
		tx.GasFeeCap = w
	}
	tx.CallerAddress = t.CallerAddress
	tx.CalleeAddress = t.CalleeAddress
	if t.Value != "" {
		w, err := parseWord(t.Value)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		tx.Value = w
	}
	if t.CallData != "" {
		data, err := parseHexBytes(t.CallData)
		if err != nil {
			return nil, fmt.Errorf("call_data: %w", err)
		}
		tx.CallData = data
	}
	tx.IsCreate = t.IsCreate
	tx.InvalidTx = t.InvalidTx
	return tx, nil
}

var rwTableTagByName = map[string]evm.RWTableTag{
	"Start":                      evm.RWTableTagStart,
	"TxAccessListAccount":        evm.RWTableTagTxAccessListAccount,
	"TxAccessListAccountStorage": evm.RWTableTagTxAccessListAccountStorage,
	"TxRefund":                   evm.RWTableTagTxRefund,
	"Account":                    evm.RWTableTagAccount,
	"AccountStorage":             evm.RWTableTagAccountStorage,
	"CallContext":                evm.RWTableTagCallContext,
	"Stack":                      evm.RWTableTagStack,
	"Memory":                     evm.RWTableTagMemory,
	"TxLog":                      evm.RWTableTagTxLog,
	"TxReceipt":                  evm.RWTableTagTxReceipt,
}

func convertRwRow(r RwInput) (evm.RWTableRow, error) {
	var row evm.RWTableRow

	switch r.Rw {
	case "Read":
		row.Rw = evm.RWRead
	case "Write":
		row.Rw = evm.RWWrite
	default:
		return row, fmt.Errorf("unknown rw kind %q", r.Rw)
	}

	tag, ok := rwTableTagByName[r.Tag]
	if !ok {
		return row, fmt.Errorf("unknown rw tag %q", r.Tag)
	}
	row.Tag = tag

	row.RwCounter = fp.NewFQ(r.RwCounter)
	row.ID = fp.NewFQ(r.ID)
	row.Address = fp.NewFQ(r.Address)
	row.FieldTag = fp.NewFQ(r.FieldTag)

	if r.StorageKey != "" {
		w, err := parseWord(r.StorageKey)
		if err != nil {
			return row, fmt.Errorf("storage_key: %w", err)
		}
		row.StorageKey = w
	}
	if r.Value != nil {
		cell, err := convertCell(*r.Value)
		if err != nil {
			return row, fmt.Errorf("value: %w", err)
		}
		row.Value = cell
	}
	if r.ValuePrev != nil {
		cell, err := convertCell(*r.ValuePrev)
		if err != nil {
			return row, fmt.Errorf("value_prev: %w", err)
		}
		row.ValuePrev = cell
	}
	if r.Aux0 != "" {
		w, err := parseWord(r.Aux0)
		if err != nil {
			return row, fmt.Errorf("aux0: %w", err)
		}
		row.Aux0 = w
	}
	return row, nil
}

func convertCell(c CellInput) (fp.WordOrValue, error) {
	switch {
	case c.Word != "":
		w, err := parseWord(c.Word)
		if err != nil {
			return fp.WordOrValue{}, err
		}
		return fp.WordCell(w), nil
	case c.Value != "":
		v, ok := new(big.Int).SetString(strings.TrimPrefix(c.Value, "0x"), baseOf(c.Value))
		if !ok {
			return fp.WordOrValue{}, fmt.Errorf("invalid value %q", c.Value)
		}
		return fp.ValueCell(fp.FQFromBig(v)), nil
	default:
		return fp.ValueCell(fp.NewFQ(0)), nil
	}
}

func convertSteps(inputs []StepInput) ([]evm.StepState, error) {
	steps := make([]evm.StepState, len(inputs))
	for i, s := range inputs {
		state, ok := evm.ExecutionStateFromName(s.ExecutionState)
		if !ok {
			return nil, fmt.Errorf("step %d: unknown execution state %q", i, s.ExecutionState)
		}
		step := evm.StepState{
			ExecutionState: state,
			RwCounter:      fp.NewFQ(s.RwCounter),
			CallID:         fp.NewFQ(s.CallID),
			ProgramCounter: fp.NewFQ(s.ProgramCounter),
			StackPointer:   fp.NewFQ(s.StackPointer),
			GasLeft:        fp.NewFQ(s.GasLeft),
			MemoryWordSize: fp.NewFQ(s.MemoryWordSize),
			LogID:          fp.NewFQ(s.LogID),
		}
		step.ReversibleWriteCounter = fp.NewFQ(s.ReversibleWriteCounter)
		if s.IsRoot {
			step.IsRoot = fp.NewFQ(1)
		}
		if s.IsCreate {
			step.IsCreate = fp.NewFQ(1)
		}
		if s.CodeHash != "" {
			w, err := parseWord(s.CodeHash)
			if err != nil {
				return nil, fmt.Errorf("step %d code_hash: %w", i, err)
			}
			step.CodeHash = w
		}
		steps[i] = step
	}
	return steps, nil
}

func parseWord(s string) (fp.Word, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), baseOf(s))
	if !ok {
		return fp.Word{}, fmt.Errorf("invalid word %q", s)
	}
	return fp.WordFromBig(v)
}

func parseHexBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func baseOf(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "zkevm-step-checker:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
