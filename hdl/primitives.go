package hdl

import "regexp"

// primitiveOrder fixes the emission order of the gate preamble. Only
// the primitives a cell body actually references are written.
var primitiveOrder = []string{"tie0", "buf1", "and2", "or2", "xor2", "ao21"}

var primitiveRef = regexp.MustCompile(`\b(tie0|buf1|and2|or2|xor2|ao21)\b`)

// usedPrimitives scans cell bodies for gate references and returns
// the matching subset of primitiveOrder.
func usedPrimitives(bodies []string) []string {
	seen := make(map[string]struct{})
	for _, b := range bodies {
		for _, m := range primitiveRef.FindAllString(b, -1) {
			seen[m] = struct{}{}
		}
	}
	var pp []string
	for _, p := range primitiveOrder {
		if _, ok := seen[p]; ok {
			pp = append(pp, p)
		}
	}
	return pp
}

// Cell bodies instantiate Verilog primitives positionally with the
// output first, so the port lists here are load bearing.
var verilogPrimitives = map[string]string{
	"tie0": `module tie0(Y);
	output Y;

	assign Y = 1'b0;
endmodule`,
	"buf1": `module buf1(Y, A);
	output Y;
	input A;

	assign Y = A;
endmodule`,
	"and2": `module and2(Y, A, B);
	output Y;
	input A, B;

	assign Y = A & B;
endmodule`,
	"or2": `module or2(Y, A, B);
	output Y;
	input A, B;

	assign Y = A | B;
endmodule`,
	"xor2": `module xor2(Y, A, B);
	output Y;
	input A, B;

	assign Y = A ^ B;
endmodule`,
	"ao21": `module ao21(Y, A, B, C);
	output Y;
	input A, B, C;

	assign Y = (A & B) | C;
endmodule`,
}

// VHDL cell bodies bind primitive ports by name, A and B and C for
// inputs and Y for the output.
var vhdlPrimitives = map[string]string{
	"tie0": `entity tie0 is
	port (
		Y : out std_logic
	);
end entity;

architecture behavior of tie0 is
begin
	Y <= '0';
end architecture;`,
	"buf1": `entity buf1 is
	port (
		A : in  std_logic;
		Y : out std_logic
	);
end entity;

architecture behavior of buf1 is
begin
	Y <= A;
end architecture;`,
	"and2": `entity and2 is
	port (
		A : in  std_logic;
		B : in  std_logic;
		Y : out std_logic
	);
end entity;

architecture behavior of and2 is
begin
	Y <= A and B;
end architecture;`,
	"or2": `entity or2 is
	port (
		A : in  std_logic;
		B : in  std_logic;
		Y : out std_logic
	);
end entity;

architecture behavior of or2 is
begin
	Y <= A or B;
end architecture;`,
	"xor2": `entity xor2 is
	port (
		A : in  std_logic;
		B : in  std_logic;
		Y : out std_logic
	);
end entity;

architecture behavior of xor2 is
begin
	Y <= A xor B;
end architecture;`,
	"ao21": `entity ao21 is
	port (
		A : in  std_logic;
		B : in  std_logic;
		C : in  std_logic;
		Y : out std_logic
	);
end entity;

architecture behavior of ao21 is
begin
	Y <= (A and B) or C;
end architecture;`,
}
