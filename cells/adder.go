package cells

import "github.com/consensys/pptrees/prefix"

// Adder returns the cell library of a binary adder. Leaves compute the
// classic generate and propagate pair from the operand bits, combines
// merge pairs with the carry operator and the post row produces sum
// bits by folding the carry into the propagate of each position.
//
// Port bits follow child order from the low-order child up, so the
// carry operator reads gout = gin[1] | (pin[1] & gin[0]).
func Adder() *Library {
	return mustLibrary("ppa", []Cell{
		{
			Name: "ppa_pre",
			Kind: prefix.Pre,
			Ins: []Port{
				{Name: "a_in", Bits: 1, External: true},
				{Name: "b_in", Bits: 1, External: true},
			},
			Outs: []Port{
				{Name: "pout", Bits: 1},
				{Name: "gout", Bits: 1},
			},
			Verilog: `module ppa_pre(a_in, b_in, pout, gout);
	input a_in, b_in;
	output pout, gout;

	xor2 U1(pout,a_in,b_in);
	and2 U2(gout,a_in,b_in);
endmodule`,
			VHDL: `entity ppa_pre is
	port (
		a_in : in  std_logic;
		b_in : in  std_logic;
		pout : out std_logic;
		gout : out std_logic
	);
end entity;

architecture behavior of ppa_pre is
begin
	U1: xor2 port map (A => a_in, B => b_in, Y => pout);
	U2: and2 port map (A => a_in, B => b_in, Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0] != in[1], in[0] && in[1]}
			},
			Delay: 3.0,
		},
		{
			Name: "ppa_pre_cin",
			Kind: prefix.PreCin,
			Ins: []Port{
				{Name: "cin", Bits: 1, External: true},
			},
			Outs: []Port{
				{Name: "pout", Bits: 1},
				{Name: "gout", Bits: 1},
			},
			Verilog: `module ppa_pre_cin(cin, pout, gout);
	input cin;
	output pout, gout;

	tie0 U1(pout);
	buf1 U2(gout,cin);
endmodule`,
			VHDL: `entity ppa_pre_cin is
	port (
		cin  : in  std_logic;
		pout : out std_logic;
		gout : out std_logic
	);
end entity;

architecture behavior of ppa_pre_cin is
begin
	U1: tie0 port map (Y => pout);
	U2: buf1 port map (A => cin, Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{false, in[0]}
			},
			Delay: 1.0,
		},
		{
			Name: "ppa_black",
			Kind: prefix.Cocycle,
			Ins: []Port{
				{Name: "gin", Bits: 2, Split: []int{1, 1}},
				{Name: "pin", Bits: 2, Split: []int{1, 1}},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
				{Name: "pout", Bits: 1},
			},
			Verilog: `module ppa_black(gin, pin, gout, pout);
	input [1:0] gin, pin;
	output gout, pout;

	and2 U1(pout,pin[1],pin[0]);
	ao21 U2(gout,gin[0],pin[1],gin[1]);
endmodule`,
			VHDL: `entity ppa_black is
	port (
		gin  : in  std_logic_vector(1 downto 0);
		pin  : in  std_logic_vector(1 downto 0);
		gout : out std_logic;
		pout : out std_logic
	);
end entity;

architecture behavior of ppa_black is
begin
	U1: and2 port map (A => pin(1), B => pin(0), Y => pout);
	U2: ao21 port map (A => gin(0), B => pin(1), C => gin(1), Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				g0, g1, p0, p1 := in[0], in[1], in[2], in[3]
				return []bool{g1 || (p1 && g0), p1 && p0}
			},
			Delay: 2.5,
		},
		{
			Name: "ppa_black3",
			Kind: prefix.Cocycle3,
			Ins: []Port{
				{Name: "gin", Bits: 3, Split: []int{1, 1, 1}},
				{Name: "pin", Bits: 3, Split: []int{1, 1, 1}},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
				{Name: "pout", Bits: 1},
			},
			Verilog: `module ppa_black3(gin, pin, gout, pout);
	input [2:0] gin, pin;
	output gout, pout;
	wire gmid, pmid;

	ao21 U1(gmid,gin[0],pin[1],gin[1]);
	ao21 U2(gout,gmid,pin[2],gin[2]);
	and2 U3(pmid,pin[1],pin[0]);
	and2 U4(pout,pin[2],pmid);
endmodule`,
			VHDL: `entity ppa_black3 is
	port (
		gin  : in  std_logic_vector(2 downto 0);
		pin  : in  std_logic_vector(2 downto 0);
		gout : out std_logic;
		pout : out std_logic
	);
end entity;

architecture behavior of ppa_black3 is
	signal gmid, pmid : std_logic;
begin
	U1: ao21 port map (A => gin(0), B => pin(1), C => gin(1), Y => gmid);
	U2: ao21 port map (A => gmid, B => pin(2), C => gin(2), Y => gout);
	U3: and2 port map (A => pin(1), B => pin(0), Y => pmid);
	U4: and2 port map (A => pin(2), B => pmid, Y => pout);
end architecture;`,
			Eval: func(in []bool) []bool {
				g0, g1, g2, p0, p1, p2 := in[0], in[1], in[2], in[3], in[4], in[5]
				gmid := g1 || (p1 && g0)
				return []bool{g2 || (p2 && gmid), p2 && p1 && p0}
			},
			Delay: 4.0,
		},
		{
			Name: "ppa_grey",
			Kind: prefix.Grey,
			Ins: []Port{
				{Name: "gin", Bits: 2, Split: []int{1, 1}},
				{Name: "pin", Bits: 1, Split: []int{0, 1}},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
			},
			Verilog: `module ppa_grey(gin, pin, gout);
	input [1:0] gin;
	input pin;
	output gout;

	ao21 U1(gout,gin[0],pin,gin[1]);
endmodule`,
			VHDL: `entity ppa_grey is
	port (
		gin  : in  std_logic_vector(1 downto 0);
		pin  : in  std_logic;
		gout : out std_logic
	);
end entity;

architecture behavior of ppa_grey is
begin
	U1: ao21 port map (A => gin(0), B => pin, C => gin(1), Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				g0, g1, p1 := in[0], in[1], in[2]
				return []bool{g1 || (p1 && g0)}
			},
			Delay: 2.5,
		},
		{
			Name: "ppa_buffer",
			Kind: prefix.Buffer,
			Ins: []Port{
				{Name: "gin", Bits: 1, Split: []int{1}},
				{Name: "pin", Bits: 1, Split: []int{1}},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
				{Name: "pout", Bits: 1},
			},
			Verilog: `module ppa_buffer(gin, pin, gout, pout);
	input gin, pin;
	output gout, pout;

	buf1 U1(gout,gin);
	buf1 U2(pout,pin);
endmodule`,
			VHDL: `entity ppa_buffer is
	port (
		gin  : in  std_logic;
		pin  : in  std_logic;
		gout : out std_logic;
		pout : out std_logic
	);
end entity;

architecture behavior of ppa_buffer is
begin
	U1: buf1 port map (A => gin, Y => gout);
	U2: buf1 port map (A => pin, Y => pout);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0], in[1]}
			},
			Delay: 2.0,
		},
		{
			Name: "ppa_buffer_grey",
			Kind: prefix.BufferGrey,
			Ins: []Port{
				{Name: "gin", Bits: 1, Split: []int{1}},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
			},
			Verilog: `module ppa_buffer_grey(gin, gout);
	input gin;
	output gout;

	buf1 U1(gout,gin);
endmodule`,
			VHDL: `entity ppa_buffer_grey is
	port (
		gin  : in  std_logic;
		gout : out std_logic
	);
end entity;

architecture behavior of ppa_buffer_grey is
begin
	U1: buf1 port map (A => gin, Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0]}
			},
			Delay: 2.0,
		},
		{
			Name: "ppa_post",
			Kind: prefix.Post,
			Ins: []Port{
				{Name: "gin", Bits: 1, Split: []int{1, 0}},
				{Name: "pin", Bits: 1, Split: []int{0, 1}},
			},
			Outs: []Port{
				{Name: "sum", Bits: 1},
			},
			Verilog: `module ppa_post(gin, pin, sum);
	input gin, pin;
	output sum;

	xor2 U1(sum,pin,gin);
endmodule`,
			VHDL: `entity ppa_post is
	port (
		gin : in  std_logic;
		pin : in  std_logic;
		sum : out std_logic
	);
end entity;

architecture behavior of ppa_post is
begin
	U1: xor2 port map (A => pin, B => gin, Y => sum);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[1] != in[0]}
			},
			Delay: 3.0,
		},
		{
			Name: "ppa_post_small",
			Kind: prefix.PostSmall,
			Ins: []Port{
				{Name: "pin", Bits: 1, Split: []int{1}},
			},
			Outs: []Port{
				{Name: "sum", Bits: 1},
			},
			Verilog: `module ppa_post_small(pin, sum);
	input pin;
	output sum;

	assign sum = pin;
endmodule`,
			VHDL: `entity ppa_post_small is
	port (
		pin : in  std_logic;
		sum : out std_logic
	);
end entity;

architecture behavior of ppa_post_small is
begin
	sum <= pin;
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0]}
			},
			Delay: 0.5,
		},
	})
}
